package models

import "time"

// Customer books appointments. Timezone carries the signed "+HH:MM" offset
// the customer last booked with, used as a display default.
type Customer struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Timezone  string    `db:"timezone" json:"timezone,omitempty"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	Search   string
	Email    string
	Page     int
	PageSize int
}
