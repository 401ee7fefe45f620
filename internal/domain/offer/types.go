package offer

type Status string

const (
	StatusActive Status = "active"
	// StatusAccepted is reached by exactly one offer per request, via consumer selection.
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	// StatusCancelled covers both provider withdrawal and cascading request cancellation.
	StatusCancelled Status = "cancelled"
	// StatusRequestFilled marks the losing active offers when a sibling is accepted.
	// Selection is the only producer of this status.
	StatusRequestFilled Status = "request_filled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusAccepted, StatusExpired, StatusCancelled, StatusRequestFilled:
		return true
	default:
		return false
	}
}

// IsTerminal: every status except active is terminal. An offer never
// returns to active once it has left it.
func (s Status) IsTerminal() bool {
	return s != StatusActive
}
