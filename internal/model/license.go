package model

import "time"

// DateLayout is the calendar-date format used for subscription and
// expiration dates throughout the service.
const DateLayout = "2006-01-02"

// License is the stored license record. Dates are kept in their
// YYYY-MM-DD text form exactly as supplied; parsing happens when a
// license is checked, so malformed stored data surfaces as a distinct
// fault instead of being silently reinterpreted.
type License struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Owner            string    `json:"owner" gorm:"not null"`
	Key              string    `json:"key" gorm:"uniqueIndex;not null"`
	SubscriptionDate string    `json:"subscription_date" gorm:"not null"`
	ExpirationDate   *string   `json:"expiration_date"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
