package models

// Role describes what a member may do on a trip. It is informational only;
// tripledger has no authentication.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Member represents a person on a trip.
type Member struct {
	// Name identifies the member within the trip and is what expenses
	// reference in PaidBy and SplitBetween.
	Name string `validate:"required,max=50"`

	// Email is optional contact information.
	Email string `validate:"omitempty,email"`

	// Role defaults to RoleMember.
	Role Role `validate:"omitempty,oneof=owner member"`

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64
}
