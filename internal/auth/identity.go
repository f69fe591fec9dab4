package auth

// UserInfo is the identity provider's userinfo payload for a verified token.
// It is passed through unchanged; the service does not model its claims.
type UserInfo map[string]any

// Subject returns the "sub" claim, or "" if absent.
func (u UserInfo) Subject() string {
	sub, _ := u["sub"].(string)
	return sub
}

// NewUser is the transient payload for creating a provider account.
type NewUser struct {
	Username string
	Email    string
	Password string
}

// User is a provider account as returned by user listing.
type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email,omitempty"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Enabled          bool   `json:"enabled"`
	EmailVerified    bool   `json:"emailVerified"`
	CreatedTimestamp int64  `json:"createdTimestamp,omitempty"`
}

// UserQuery narrows a user listing. A nil Max means "all users".
type UserQuery struct {
	First  *int
	Max    *int
	Search string
}
