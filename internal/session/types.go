package session

import "time"

// State is the server-side record linked to a client by an opaque token.
// A request counts as authenticated iff IsLoggedIn is true; Logout flips
// the flag and keeps the record.
type State struct {
	IsLoggedIn bool
	Username   string
	Level      int
	ExpiresAt  time.Time
}
