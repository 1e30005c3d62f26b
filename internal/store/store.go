package store

import (
	"errors"
	"fmt"

	"license-validation-service/internal/model"

	"gorm.io/gorm"
)

// ErrNotFound is returned by FindByKey when no record has the key.
var ErrNotFound = errors.New("license not found")

// Store owns the license table. All mutations commit before returning.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts rec as a new license, or replaces the owner, dates
// and active flag of the existing record with the same key. The
// original ID is preserved on update and rec is populated with the
// stored state either way. Returns whether a new record was created.
//
// Two racing upserts for a brand-new key are arbitrated by the unique
// index: the loser's insert fails with a duplicate-key error and is
// retried as an in-place update, so exactly one record per key ever
// exists and the last writer wins.
func (s *Store) Upsert(rec *model.License) (bool, error) {
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.License
		res := tx.Where("key = ?", rec.Key).First(&existing)
		if res.Error == nil {
			return replaceFields(tx, &existing, rec)
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup license: %w", res.Error)
		}

		rec.ID = 0
		if err := tx.Create(rec).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("insert license: %w", err)
			}
			// Lost the insert race; the row exists now.
			if ferr := tx.Where("key = ?", rec.Key).First(&existing).Error; ferr != nil {
				return fmt.Errorf("lookup license after conflict: %w", ferr)
			}
			return replaceFields(tx, &existing, rec)
		}

		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// replaceFields overwrites every caller-supplied field of existing
// with those of rec, keeping the assigned ID, then reflects the stored
// state back into rec.
func replaceFields(tx *gorm.DB, existing, rec *model.License) error {
	existing.Owner = rec.Owner
	existing.SubscriptionDate = rec.SubscriptionDate
	existing.ExpirationDate = rec.ExpirationDate
	existing.Active = rec.Active
	if err := tx.Save(existing).Error; err != nil {
		return fmt.Errorf("update license: %w", err)
	}
	*rec = *existing
	return nil
}

// Deactivate flips the record with the given key to inactive. It is
// idempotent: deactivating a missing or already-inactive key is not an
// error. The returned flag tells the caller whether a record matched.
func (s *Store) Deactivate(key string) (bool, error) {
	res := s.db.Model(&model.License{}).Where("key = ?", key).Update("active", false)
	if res.Error != nil {
		return false, fmt.Errorf("deactivate license: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// FindByKey returns the record with the exact key, or ErrNotFound.
func (s *Store) FindByKey(key string) (*model.License, error) {
	var lic model.License
	err := s.db.Where("key = ?", key).First(&lic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup license: %w", err)
	}
	return &lic, nil
}

// ListAll returns every record, active or not, ordered by id.
func (s *Store) ListAll() ([]model.License, error) {
	var licenses []model.License
	if err := s.db.Order("id asc").Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	return licenses, nil
}
