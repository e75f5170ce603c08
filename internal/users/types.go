package users

// User is one account row. Password is stored and compared in plaintext to
// stay compatible with the existing users table; see DESIGN.md for the
// flagged hardening path. Level is an informational privilege tier.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Level    int    `json:"level"`
}
