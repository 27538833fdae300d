package model

import "time"

// ActionRecord is one journaled action: which flow received which action
// and when. Payloads are never recorded.
type ActionRecord struct {
	ID        string    `db:"id"`
	Flow      string    `db:"flow"`
	Action    string    `db:"action"`
	CreatedAt time.Time `db:"created_at"`
}
