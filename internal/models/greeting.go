package models

import (
	"time"
)

// Greeting represents a row of the greetings table.
type Greeting struct {
	ID          int64      `json:"greeting_id"`
	Message     string     `json:"message"`
	Type        *string    `json:"type,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	MessageHash *string    `json:"message_hash,omitempty"`
}

// GreetingFilter narrows a greetings read. Zero values disable each predicate.
type GreetingFilter struct {
	Type         string // storage value, exact match
	Query        string // full-text predicate on message
	CurrentMonth bool   // created in the current calendar month and year
}
