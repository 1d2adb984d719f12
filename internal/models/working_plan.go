package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Break is a recurring pause inside a working day, wall-clock "HH:MM" values
// in the provider's own timezone.
type Break struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WorkingDay describes one weekday of a provider's recurring plan. A nil
// Start or End marks a day the provider does not work at all.
type WorkingDay struct {
	Start  *string `json:"start"`
	End    *string `json:"end"`
	Breaks []Break `json:"breaks"`
}

// Working reports whether the provider accepts appointments on this day.
func (d *WorkingDay) Working() bool {
	return d != nil && d.Start != nil && d.End != nil
}

// WorkingPlan maps lowercase English weekday names ("monday" .. "sunday")
// to that day's hours. Stored as a JSON column on the provider record.
type WorkingPlan map[string]*WorkingDay

// Day returns the plan entry for a weekday key, nil when absent.
func (p WorkingPlan) Day(weekday string) *WorkingDay {
	if p == nil {
		return nil
	}
	return p[weekday]
}

// Value implements driver.Valuer so sqlx can persist the plan as JSON.
func (p WorkingPlan) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner for the JSON working-plan column.
func (p *WorkingPlan) Scan(src interface{}) error {
	if src == nil {
		*p = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported working plan source type %T", src)
	}
}
