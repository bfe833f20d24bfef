package chat

// Role identifies which side of a conversation a participant is on. It is a
// closed two-variant enum; every branch on it switches exhaustively.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleTailor   Role = "tailor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleTailor:
		return true
	}
	return false
}

// Peer returns the opposite side of the thread.
func (r Role) Peer() Role {
	switch r {
	case RoleCustomer:
		return RoleTailor
	case RoleTailor:
		return RoleCustomer
	}
	return ""
}
