package request

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusNoOffers  Status = "no_offers"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusInTransit, StatusDelivered, StatusCancelled, StatusNoOffers:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status transitions are permitted.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusNoOffers:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks the monotonic lifecycle:
// pending -> accepted -> in_transit -> delivered, with pending-only exits
// to cancelled and no_offers. Once accepted the request is committed to a
// supplier and only moves forward.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted || next == StatusCancelled || next == StatusNoOffers
	case StatusAccepted:
		return next == StatusInTransit
	case StatusInTransit:
		return next == StatusDelivered
	default:
		return false
	}
}

// IsOpenForOffers reports whether providers may still submit or have
// offers selected on a request with this status.
func (s Status) IsOpenForOffers() bool {
	return s == StatusPending
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
)

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentTransfer
}

type CancelActor string

const (
	CancelledByConsumer CancelActor = "consumer"
	CancelledBySystem   CancelActor = "system"
)
