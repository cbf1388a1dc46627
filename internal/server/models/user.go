// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account identity. Email is unique and stored as given
// (matching is case-sensitive). PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DateJoined   time.Time `json:"date_joined"`
}
