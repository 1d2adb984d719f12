package models

import (
	"database/sql"
	"time"
)

// Appointment is a booked period of a provider's time. Start and End are
// stored in the reference zone (UTC). IsUnavailable marks a blocked period
// with no customer or service attached, e.g. an imported calendar block.
type Appointment struct {
	ID            string         `db:"id" json:"id"`
	ProviderID    string         `db:"provider_id" json:"provider_id"`
	ServiceID     sql.NullString `db:"service_id" json:"service_id,omitempty"`
	CustomerID    sql.NullString `db:"customer_id" json:"customer_id,omitempty"`
	StartDatetime time.Time      `db:"start_datetime" json:"start_datetime"`
	EndDatetime   time.Time      `db:"end_datetime" json:"end_datetime"`
	IsUnavailable bool           `db:"is_unavailable" json:"is_unavailable"`
	Hash          string         `db:"hash" json:"hash,omitempty"`
	Notes         string         `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	ProviderID  string
	ServiceID   string
	CustomerID  string
	From        time.Time
	To          time.Time
	Unavailable *bool
	Page        int
	PageSize    int
}
