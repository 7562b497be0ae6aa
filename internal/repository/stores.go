package repository

import (
	"context" // Request scoped cancellation

	"gorm.io/gorm" // GORM ORM library

	"store_rating/internal/domain" // Domain models
)

// CreateStore inserts s; a second store for the same owner is a Conflict
func (r *Repository) CreateStore(ctx context.Context, s *domain.Store) error {
	if err := r.db.WithContext(ctx).Omit("Owner").Create(s).Error; err != nil {
		return translate(err, "store for this owner")
	}
	return nil
}

// GetStore fetches a store by id with its owner
func (r *Repository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).Preload("Owner").First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err, "store")
	}
	return &s, nil
}

// GetStoreByOwner fetches the store owned by ownerID
func (r *Repository) GetStoreByOwner(ctx context.Context, ownerID string) (*domain.Store, error) {
	var s domain.Store
	if err := r.db.WithContext(ctx).Preload("Owner").First(&s, "owner_id = ?", ownerID).Error; err != nil {
		return nil, translate(err, "store")
	}
	return &s, nil
}

// UpdateStore applies fields to the store with id
func (r *Repository) UpdateStore(ctx context.Context, id string, fields map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&domain.Store{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return translate(err, "store")
	}
	return nil
}

// DeleteStore removes a store together with its ratings
func (r *Repository) DeleteStore(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("store_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Store{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "store")
}

// CountStores returns the number of stores
func (r *Repository) CountStores(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Store{}).Count(&n).Error; err != nil {
		return 0, translate(err, "store")
	}
	return n, nil
}

func (r *Repository) storeQuery(ctx context.Context, search string) *gorm.DB {
	return searchAny(r.db.WithContext(ctx).Model(&domain.Store{}), search, "name", "address")
}

// ListStores returns one page of stores matching search, sorted in storage,
// and the total match count
func (r *Repository) ListStores(ctx context.Context, search string, s Sort, page domain.PageQuery) ([]domain.Store, int64, error) {
	var total int64
	if err := r.storeQuery(ctx, search).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "store")
	}
	var stores []domain.Store
	if err := order(r.storeQuery(ctx, search), s).Preload("Owner").
		Offset(page.Offset()).Limit(page.Limit).Find(&stores).Error; err != nil {
		return nil, 0, translate(err, "store")
	}
	return stores, total, nil
}

// ListAllStores returns every store matching search ordered by id
func (r *Repository) ListAllStores(ctx context.Context, search string) ([]domain.Store, error) {
	var stores []domain.Store
	if err := r.storeQuery(ctx, search).Preload("Owner").Order("id").Find(&stores).Error; err != nil {
		return nil, translate(err, "store")
	}
	return stores, nil
}
