package user

type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleConsumer, RoleProvider, RoleAdmin:
		return true
	default:
		return false
	}
}
