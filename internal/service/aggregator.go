package service

import (
	"context" // Request scoped cancellation

	"store_rating/internal/domain"     // Domain models and error kinds
	"store_rating/internal/repository" // Entity store
)

// Aggregator computes rating aggregates from the rating rows on every call.
// Nothing is cached, so results always reflect committed upserts.
type Aggregator struct {
	repo *repository.Repository // Rating rows
}

// NewAggregator returns an Aggregator reading from repo.
func NewAggregator(repo *repository.Repository) *Aggregator {
	return &Aggregator{repo: repo}
}

// AverageAndCount returns the mean rating and rating count of storeID;
// {0, 0} when the store has no ratings.
func (a *Aggregator) AverageAndCount(ctx context.Context, storeID string) (domain.Aggregate, error) {
	aggs, err := a.ForStores(ctx, []string{storeID})
	if err != nil {
		return domain.Aggregate{}, err
	}
	return aggs[storeID], nil
}

// ForStores returns the aggregate of every store in storeIDs. Stores without
// ratings map to the zero Aggregate.
func (a *Aggregator) ForStores(ctx context.Context, storeIDs []string) (map[string]domain.Aggregate, error) {
	if len(storeIDs) == 0 {
		return map[string]domain.Aggregate{}, nil // Nothing to query
	}
	aggs, err := a.repo.Aggregates(ctx, storeIDs)
	if err != nil {
		return nil, err
	}
	// Unrated stores get an explicit zero aggregate
	for _, id := range storeIDs {
		if _, ok := aggs[id]; !ok {
			aggs[id] = domain.Aggregate{}
		}
	}
	return aggs, nil
}
