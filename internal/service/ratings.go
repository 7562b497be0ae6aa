package service

import (
	"context" // Request scoped cancellation

	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain"     // Domain models and error kinds
	"store_rating/internal/policy"     // Access policy
	"store_rating/internal/repository" // Entity store
)

// RatingInput is the value a user gives a store.
type RatingInput struct {
	StoreID string `json:"storeId" validate:"required"`   // Rated store
	Rating  int    `json:"rating" validate:"gte=1,lte=5"` // 1 to 5 inclusive
}

// RatingService records ratings and lists them.
type RatingService struct {
	repo   *repository.Repository // Rating and store rows
	policy *policy.Policy         // Access rules
}

// NewRatingService wires a RatingService.
func NewRatingService(repo *repository.Repository, p *policy.Policy) *RatingService {
	return &RatingService{repo: repo, policy: p}
}

// Upsert stores the actor's rating of a store, replacing an earlier value.
// Owners cannot rate their own store. Concurrent upserts of the same pair
// leave a single row holding the last written value.
func (s *RatingService) Upsert(ctx context.Context, actor *domain.Actor, in RatingInput) (RatingView, error) {
	if actor == nil {
		return RatingView{}, s.policy.Authorize(nil, policy.UpsertRating, policy.Resource{}) // Unauthenticated before any input checks
	}
	if err := check(in); err != nil {
		return RatingView{}, err
	}
	store, err := s.repo.GetStore(ctx, in.StoreID) // Unknown store is NotFound
	if err != nil {
		return RatingView{}, err
	}
	if err := s.policy.Authorize(actor, policy.UpsertRating, policy.Resource{StoreOwnerID: store.OwnerID}); err != nil {
		return RatingView{}, err
	}

	rating, err := s.repo.UpsertRating(ctx, actor.ID, store.ID, in.Rating) // Insert or update on (user_id, store_id)
	if err != nil {
		return RatingView{}, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  actor.ID,
		"store_id": store.ID,
		"rating":   in.Rating,
	}).Info("Rating saved")
	return newRatingView(rating), nil
}

// Mine returns the actor's rating of a store.
func (s *RatingService) Mine(ctx context.Context, actor *domain.Actor, storeID string) (RatingView, error) {
	if err := s.policy.Authorize(actor, policy.ReadOwnRating, policy.Resource{}); err != nil {
		return RatingView{}, err
	}
	rating, err := s.repo.GetRating(ctx, actor.ID, storeID) // NotFound when not rated yet
	if err != nil {
		return RatingView{}, err
	}
	return newRatingView(rating), nil
}

// ListForStore returns a page of a store's ratings with their raters.
func (s *RatingService) ListForStore(ctx context.Context, actor *domain.Actor, storeID string, page domain.PageQuery) (domain.Page[RatingView], error) {
	if err := s.policy.Authorize(actor, policy.ListStoreRatings, policy.Resource{}); err != nil {
		return domain.Page[RatingView]{}, err
	}
	if _, err := s.repo.GetStore(ctx, storeID); err != nil { // Store must exist
		return domain.Page[RatingView]{}, err
	}
	page = page.Normalize()
	ratings, total, err := s.repo.ListStoreRatings(ctx, storeID, page)
	if err != nil {
		return domain.Page[RatingView]{}, err
	}
	return ratingPage(ratings, page, total), nil
}

// ListForUser returns a page of the ratings a user gave, with their stores.
func (s *RatingService) ListForUser(ctx context.Context, actor *domain.Actor, userID string, page domain.PageQuery) (domain.Page[RatingView], error) {
	if err := s.policy.Authorize(actor, policy.ListUserRatings, policy.Resource{TargetUserID: userID}); err != nil {
		return domain.Page[RatingView]{}, err
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil { // User must exist
		return domain.Page[RatingView]{}, err
	}
	page = page.Normalize()
	ratings, total, err := s.repo.ListUserRatings(ctx, userID, page)
	if err != nil {
		return domain.Page[RatingView]{}, err
	}
	return ratingPage(ratings, page, total), nil
}

// ratingPage wraps ratings with page metadata
func ratingPage(ratings []domain.Rating, page domain.PageQuery, total int64) domain.Page[RatingView] {
	views := make([]RatingView, len(ratings))
	for i := range ratings {
		views[i] = newRatingView(&ratings[i])
	}
	return domain.Page[RatingView]{Data: views, Meta: domain.NewMeta(page, total)}
}
