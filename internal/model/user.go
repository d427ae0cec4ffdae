package model

// User is the logged-in account as described by the session token.
type User struct {
	Username string `json:"username"`
	TeamID   string `json:"team_id"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoggedIn reports whether u holds a session.
func (u User) LoggedIn() bool {
	return u.Username != ""
}
