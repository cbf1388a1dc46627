package models

import "time"

// Note is a free-form text record owned by exactly one user. UserID is
// assigned at creation and never reassigned.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
