package models

import "time"

// Provider is a bookable member of staff. Times stored for the provider's
// appointments are kept in the reference zone (UTC); Timezone carries the
// signed "+HH:MM" offset used to translate them to the provider's wall clock.
type Provider struct {
	ID           string      `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	FirstName    string      `db:"first_name" json:"first_name"`
	LastName     string      `db:"last_name" json:"last_name"`
	Phone        string      `db:"phone" json:"phone,omitempty"`
	Timezone     string      `db:"timezone" json:"timezone"`
	WorkingPlan  WorkingPlan `db:"working_plan" json:"working_plan"`
	ServiceIDs   ServiceIDs  `db:"service_ids" json:"service_ids"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Active       bool        `db:"active" json:"active"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// Provides reports whether the provider is assigned to a service.
func (p *Provider) Provides(serviceID string) bool {
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// ProviderFilter narrows provider listings.
type ProviderFilter struct {
	ServiceID string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
}
