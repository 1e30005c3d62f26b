// Package license decides whether a stored license record is valid at
// a given instant.
package license

import (
	"errors"
	"fmt"
	"time"

	"license-validation-service/internal/model"
	"license-validation-service/internal/store"
)

// Status classifies the result of a validity check.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusExpired Status = "expired"
)

// ErrBadExpiration reports a stored expiration date that does not
// parse. This is a data fault on the server side, distinct from an
// invalid or expired license.
var ErrBadExpiration = errors.New("license date format error")

// Outcome is the result of evaluating one license key. Owner and the
// dates are only echoed back for a valid license.
type Outcome struct {
	Status           Status  `json:"-"`
	Valid            bool    `json:"valid"`
	Message          string  `json:"message"`
	Owner            string  `json:"owner,omitempty"`
	SubscriptionDate string  `json:"subscription_date,omitempty"`
	ExpirationDate   *string `json:"expiration_date,omitempty"`
}

// Evaluate applies the validity rule to a record. A nil or inactive
// record is indistinguishable from a missing one. The comparison is at
// calendar-date granularity and the boundary is inclusive: a license
// is still valid on its expiration date and expires the day after.
func Evaluate(rec *model.License, now time.Time) (Outcome, error) {
	if rec == nil || !rec.Active {
		return Outcome{Status: StatusInvalid, Message: "license invalid or deactivated"}, nil
	}

	if rec.ExpirationDate == nil {
		return validOutcome(rec), nil
	}

	exp, err := time.Parse(model.DateLayout, *rec.ExpirationDate)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %q", ErrBadExpiration, *rec.ExpirationDate)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today.After(exp) {
		return Outcome{Status: StatusExpired, Message: "license expired"}, nil
	}
	return validOutcome(rec), nil
}

func validOutcome(rec *model.License) Outcome {
	return Outcome{
		Status:           StatusValid,
		Valid:            true,
		Message:          "license valid",
		Owner:            rec.Owner,
		SubscriptionDate: rec.SubscriptionDate,
		ExpirationDate:   rec.ExpirationDate,
	}
}

// Checker looks licenses up in the store and evaluates them.
type Checker struct {
	store *store.Store
}

func NewChecker(s *store.Store) *Checker {
	return &Checker{store: s}
}

// Check evaluates the license with the given key at the given instant.
// A missing key yields the invalid outcome, not an error; only storage
// failures and unparseable stored dates are reported as errors.
func (c *Checker) Check(key string, now time.Time) (Outcome, error) {
	rec, err := c.store.FindByKey(key)
	if errors.Is(err, store.ErrNotFound) {
		return Evaluate(nil, now)
	}
	if err != nil {
		return Outcome{}, err
	}
	return Evaluate(rec, now)
}
