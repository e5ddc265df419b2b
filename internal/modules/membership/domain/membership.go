package domain

// Channel is a chat users must join before content is released
type Channel struct {
	ID   int64
	Name string
	Link string
}

// Membership is what the chat member lookup returned for one user
type Membership struct {
	Status Status
	// IsMember is only meaningful for restricted users
	IsMember bool
}

// Joined reports whether the membership counts as joined
func (m Membership) Joined() bool {
	switch m.Status {
	case StatusOwner, StatusAdministrator, StatusMember:
		return true
	case StatusRestricted:
		return m.IsMember
	default:
		return false
	}
}
