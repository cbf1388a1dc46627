package models

import "time"

// TodoList groups todo items. User ownership of items is transitive
// through the list.
type TodoList struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Items       []TodoItem `json:"items"`
}

// TodoItem belongs to a TodoList. CompletedAt is non-nil exactly when
// IsCompleted is true.
type TodoItem struct {
	ID          string     `json:"id"`
	ListID      string     `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
}
