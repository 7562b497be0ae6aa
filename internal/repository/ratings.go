package repository

import (
	"context" // Request scoped cancellation
	"time"    // Update timestamps

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Conflict clause

	"store_rating/internal/domain" // Domain models
)

// aggregateChunk bounds the size of IN lists sent to the database
const aggregateChunk = 500

// UpsertRating inserts the rating of userID for storeID or, when one exists,
// overwrites its value. The (user_id, store_id) unique index makes the write
// atomic against concurrent upserts of the same pair.
func (r *Repository) UpsertRating(ctx context.Context, userID, storeID string, value int) (*domain.Rating, error) {
	var out domain.Rating
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := domain.Rating{UserID: userID, StoreID: storeID, Rating: value}
		if err := tx.Omit("User", "Store").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "store_id"}},
			DoUpdates: clause.Assignments(map[string]any{"rating": value, "updated_at": time.Now()}),
		}).Create(&row).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND store_id = ?", userID, storeID).First(&out).Error
	})
	if err != nil {
		return nil, translate(err, "rating")
	}
	return &out, nil
}

// GetRating fetches the rating of userID for storeID
func (r *Repository) GetRating(ctx context.Context, userID, storeID string) (*domain.Rating, error) {
	var out domain.Rating
	if err := r.db.WithContext(ctx).First(&out, "user_id = ? AND store_id = ?", userID, storeID).Error; err != nil {
		return nil, translate(err, "rating")
	}
	return &out, nil
}

// CountRatings returns the number of rating rows of storeID
func (r *Repository) CountRatings(ctx context.Context, storeID string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Rating{}).Where("store_id = ?", storeID).Count(&n).Error; err != nil {
		return 0, translate(err, "rating")
	}
	return n, nil
}

// Aggregates computes the rating aggregate of every store in storeIDs from the
// rating rows. Stores without ratings are absent from the result.
func (r *Repository) Aggregates(ctx context.Context, storeIDs []string) (map[string]domain.Aggregate, error) {
	out := make(map[string]domain.Aggregate, len(storeIDs))
	for start := 0; start < len(storeIDs); start += aggregateChunk {
		end := min(start+aggregateChunk, len(storeIDs))
		var rows []struct {
			StoreID     string
			RatingCount int64
			RatingSum   int64
		}
		if err := r.db.WithContext(ctx).Model(&domain.Rating{}).
			Select("store_id, COUNT(*) AS rating_count, COALESCE(SUM(rating), 0) AS rating_sum").
			Where("store_id IN ?", storeIDs[start:end]).
			Group("store_id").
			Scan(&rows).Error; err != nil {
			return nil, translate(err, "rating")
		}
		for _, row := range rows {
			out[row.StoreID] = domain.NewAggregate(row.RatingSum, row.RatingCount)
		}
	}
	return out, nil
}

// UserRatings returns the values userID gave to the stores in storeIDs
func (r *Repository) UserRatings(ctx context.Context, userID string, storeIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(storeIDs))
	if len(storeIDs) == 0 {
		return out, nil
	}
	var rows []domain.Rating
	if err := r.db.WithContext(ctx).Select("store_id", "rating").
		Where("user_id = ? AND store_id IN ?", userID, storeIDs).Find(&rows).Error; err != nil {
		return nil, translate(err, "rating")
	}
	for _, row := range rows {
		out[row.StoreID] = row.Rating
	}
	return out, nil
}

// ratingsPage counts the rows matched by where and loads one page of them,
// newest first, with the preload association attached
func (r *Repository) ratingsPage(ctx context.Context, preload string, page domain.PageQuery, where string, args ...any) ([]domain.Rating, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Rating{}).Where(where, args...).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "rating")
	}
	var ratings []domain.Rating
	q := r.db.WithContext(ctx).Preload(preload).Where(where, args...)
	if err := order(q, Sort{Column: "created_at", Desc: true}).
		Offset(page.Offset()).Limit(page.Limit).Find(&ratings).Error; err != nil {
		return nil, 0, translate(err, "rating")
	}
	return ratings, total, nil
}

// ListStoreRatings returns a page of the ratings of storeID with their raters
func (r *Repository) ListStoreRatings(ctx context.Context, storeID string, page domain.PageQuery) ([]domain.Rating, int64, error) {
	return r.ratingsPage(ctx, "User", page, "store_id = ?", storeID)
}

// ListUserRatings returns a page of the ratings given by userID with their stores
func (r *Repository) ListUserRatings(ctx context.Context, userID string, page domain.PageQuery) ([]domain.Rating, int64, error) {
	return r.ratingsPage(ctx, "Store", page, "user_id = ?", userID)
}
