package domain

// User is the authenticated account attached to a session.
type User struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Session holds the bearer token and user returned by login/register.
// A nil session means logged out.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
