package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Availability type of a service: fixed slots start back-to-back at
// service-duration steps, flexible slots at a fine fixed step.
const (
	AvailabilityFixed    = "fixed"
	AvailabilityFlexible = "flexible"
)

// Service is a bookable offering with a duration and attendant capacity.
// AttendantsNumber == 1 is the ordinary single-customer case.
type Service struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	DurationMinutes  int       `db:"duration_minutes" json:"duration_minutes"`
	AttendantsNumber int       `db:"attendants_number" json:"attendants_number"`
	AvailabilityType string    `db:"availability_type" json:"availability_type"`
	Price            float64   `db:"price" json:"price"`
	Currency         string    `db:"currency" json:"currency,omitempty"`
	Description      string    `db:"description" json:"description,omitempty"`
	Active           bool      `db:"active" json:"active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Duration returns the service length as a time.Duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// MultiAttendant reports whether more than one customer may share a slot.
func (s *Service) MultiAttendant() bool {
	return s.AttendantsNumber > 1
}

// ServiceIDs is a JSON-encoded list of service IDs on the provider record.
type ServiceIDs []string

// Value implements driver.Valuer for the JSON service list column.
func (ids ServiceIDs) Value() (driver.Value, error) {
	if ids == nil {
		return "[]", nil
	}
	return json.Marshal(ids)
}

// Scan implements sql.Scanner for the JSON service list column.
func (ids *ServiceIDs) Scan(src interface{}) error {
	if src == nil {
		*ids = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, ids)
	case string:
		return json.Unmarshal([]byte(v), ids)
	default:
		return fmt.Errorf("unsupported service ids source type %T", src)
	}
}

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
