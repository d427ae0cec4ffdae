package model

import "time"

// Notification is an operational error surfaced to the user: a short
// headline plus a one-sentence detail.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	Headline  string    `json:"headline" db:"headline"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
