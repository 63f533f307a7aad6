package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tezpos/tezpos/internal/models"
)

// TableResolver recovers a table from a stale or legacy identifier after
// the direct lookup failed. Kept behind an interface so the heuristic stays
// out of the hot order-entry path and can be replaced by a one-time
// migration.
type TableResolver interface {
	Resolve(tx *gorm.DB, legacyID string) (*models.Table, error)
}

// NameResolver matches legacy identifiers against table names: first an
// exact name match, then a trailing-number match ("table-12" finds "12").
type NameResolver struct{}

// Resolve implements TableResolver
func (NameResolver) Resolve(tx *gorm.DB, legacyID string) (*models.Table, error) {
	var table models.Table
	err := tx.Where("name = ? AND deleted_at IS NULL", legacyID).First(&table).Error
	if err == nil {
		return &table, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if idx := strings.LastIndexAny(legacyID, "-_ "); idx >= 0 && idx+1 < len(legacyID) {
		suffix := legacyID[idx+1:]
		err = tx.Where("name = ? AND deleted_at IS NULL", suffix).First(&table).Error
		if err == nil {
			return &table, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, ErrTableNotFound
}

// findTable loads a table by id, falling back to the legacy resolver
// before failing with TableNotFound.
func findTable(tx *gorm.DB, resolver TableResolver, id string) (*models.Table, error) {
	var table models.Table
	err := tx.Where("id = ? AND deleted_at IS NULL", id).First(&table).Error
	if err == nil {
		return &table, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if resolver != nil {
		return resolver.Resolve(tx, id)
	}
	return nil, ErrTableNotFound
}
