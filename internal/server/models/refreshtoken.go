package models

import "time"

// RefreshToken is a server-stored opaque credential allowing a client to
// obtain a fresh access token. Tokens are rotated on every use.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
