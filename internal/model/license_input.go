package model

// LicenseInput is the admin upsert request body. Expiration is
// optional; a license without one never expires by date.
type LicenseInput struct {
	Owner            string  `json:"owner" validate:"required"`
	Key              string  `json:"key" validate:"required"`
	SubscriptionDate string  `json:"subscription_date" validate:"required,datetime=2006-01-02"`
	ExpirationDate   *string `json:"expiration_date" validate:"omitempty,datetime=2006-01-02"`
	Active           bool    `json:"active"`
}

// Record builds the license record a store upsert expects.
func (in *LicenseInput) Record() *License {
	return &License{
		Owner:            in.Owner,
		Key:              in.Key,
		SubscriptionDate: in.SubscriptionDate,
		ExpirationDate:   in.ExpirationDate,
		Active:           in.Active,
	}
}
