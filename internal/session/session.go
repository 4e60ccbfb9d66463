package session

// Role is the authorization role carried by a session.
type Role string

const (
	RoleTraveller Role = "traveller"
	RoleAdmin     Role = "admin"
)

// Session identifies the authenticated user on whose behalf a call is made.
// It is always passed explicitly; there is no ambient current user.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// IsAuthenticated returns true if the session names a user.
func (s Session) IsAuthenticated() bool {
	return s.UserID != ""
}

// IsAdmin returns true if the session carries the admin role.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
