package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rasoilabs/rasoipos/models"
)

// Repository is the tenant-scoped CRUD core shared by every entity
// class. Entity-specific queries live on the typed wrappers in
// repositories.go; everything here is mandatory-tenant and treats a
// row stored under a different tenant as not found.
//
// Upsert is the single write primitive, used by local mutation and by
// the sync apply step alike. It replaces the stored record wholesale
// (except id and createdAt), so callers always pass complete records.
type Repository[T any, P models.EntityPtr[T]] struct {
	db *gorm.DB
}

func newRepository[T any, P models.EntityPtr[T]](db *gorm.DB) *Repository[T, P] {
	return &Repository[T, P]{db: db}
}

// Get returns the record with the given id under the given tenant.
func (r *Repository[T, P]) Get(ctx context.Context, tenantID, id string) (*T, error) {
	var rec T
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns every record of the class for the tenant, oldest first.
func (r *Repository[T, P]) List(ctx context.Context, tenantID string) ([]T, error) {
	var recs []T
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at, id").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Upsert inserts the record or replaces the stored one with the same
// id. The tenant identifier is stamped from the argument; lastUpdated
// is written exactly as the caller set it. When the id already exists
// under a different tenant the stored row is left untouched and
// ErrNotFound is returned.
func (r *Repository[T, P]) Upsert(ctx context.Context, tenantID string, rec *T) error {
	meta := P(rec).Meta()
	if meta.ID == "" {
		return fmt.Errorf("upsert: missing record id")
	}
	meta.TenantID = tenantID

	var foreign int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ? AND tenant_id <> ?", meta.ID, tenantID).
		Count(&foreign).Error
	if err != nil {
		return err
	}
	if foreign > 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

// Delete removes the record. Missing rows and rows under another
// tenant both report ErrNotFound.
func (r *Repository[T, P]) Delete(ctx context.Context, tenantID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count reports how many records the tenant owns in this class.
func (r *Repository[T, P]) Count(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).
		Where("tenant_id = ?", tenantID).
		Count(&n).Error
	return n, err
}
