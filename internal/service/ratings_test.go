package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_rating/internal/domain"
)

func TestAggregateWithoutRatings(t *testing.T) {
	h := newHarness(t)
	store := h.addStore(t, "Quiet Corner", nil)

	agg, err := h.stores.Aggregate(context.Background(), nil, store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{Average: 0, Count: 0}, agg)
}

func TestAggregateAverage(t *testing.T) {
	h := newHarness(t)
	store := h.addStore(t, "Corner Bakery", nil)
	for i, v := range []int{5, 3, 4} {
		h.rate(t, h.addRater(t, i), store.ID, v)
	}

	agg, err := h.stores.Aggregate(context.Background(), nil, store.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, agg.Average, 1e-9)
	assert.Equal(t, int64(3), agg.Count)

	got, err := h.stores.Get(context.Background(), nil, store.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.AverageRating, 1e-9)
	assert.Equal(t, int64(3), got.TotalRatings)
}

func TestAggregateUnknownStore(t *testing.T) {
	h := newHarness(t)
	_, err := h.stores.Aggregate(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpsertReplacesValue(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.addStore(t, "Corner Bakery", nil)
	user := h.addRater(t, 1)

	first, err := h.ratings.Upsert(ctx, user, RatingInput{StoreID: store.ID, Rating: 3})
	require.NoError(t, err)
	second, err := h.ratings.Upsert(ctx, user, RatingInput{StoreID: store.ID, Rating: 5})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)

	n, err := h.repo.CountRatings(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	agg, err := h.stores.Aggregate(ctx, nil, store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{Average: 5, Count: 1}, agg)
}

func TestUpsertIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.addStore(t, "Corner Bakery", nil)
	user := h.addRater(t, 1)

	h.rate(t, user, store.ID, 4)
	h.rate(t, user, store.ID, 4)

	agg, err := h.stores.Aggregate(ctx, nil, store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{Average: 4, Count: 1}, agg)
}

func TestConcurrentUpsertsLeaveOneRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	store := h.addStore(t, "Corner Bakery", nil)
	user := h.addRater(t, 1)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(value int) {
			defer wg.Done()
			_, err := h.ratings.Upsert(ctx, user, RatingInput{StoreID: store.ID, Rating: value})
			errs <- err
		}(i%5 + 1)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := h.repo.CountRatings(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mine, err := h.ratings.Mine(ctx, user, store.ID)
	require.NoError(t, err)
	agg, err := h.stores.Aggregate(ctx, nil, store.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(mine.Rating), agg.Average)
}

func TestUpsertRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.addUser(t, "Store Owner Account Name", "owner@example.com", domain.RoleStoreOwner)
	store := h.addStore(t, "Owned Store", &owner.ID)
	user := h.addRater(t, 1)

	tests := []struct {
		name  string
		actor *domain.Actor
		in    RatingInput
		want  error
	}{
		{"unauthenticated", nil, RatingInput{StoreID: store.ID, Rating: 3}, domain.ErrUnauthenticated},
		{"above range", user, RatingInput{StoreID: store.ID, Rating: 6}, domain.ErrInvalidInput},
		{"below range", user, RatingInput{StoreID: store.ID, Rating: 0}, domain.ErrInvalidInput},
		{"unknown store", user, RatingInput{StoreID: "missing", Rating: 3}, domain.ErrNotFound},
		{"owner of the store", owner, RatingInput{StoreID: store.ID, Rating: 5}, domain.ErrForbidden},
		{"admin", h.admin, RatingInput{StoreID: store.ID, Rating: 5}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.ratings.Upsert(ctx, tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, err := h.repo.CountRatings(ctx, store.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListStoreRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.addUser(t, "Store Owner Account Name", "owner@example.com", domain.RoleStoreOwner)
	store := h.addStore(t, "Owned Store", &owner.ID)
	for i := 0; i < 3; i++ {
		h.rate(t, h.addRater(t, i), store.ID, i+2)
	}

	page, err := h.ratings.ListForStore(ctx, owner, store.ID, domain.PageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	require.NotNil(t, page.Data[0].User)
	assert.NotEmpty(t, page.Data[0].User.Email)

	_, err = h.ratings.ListForStore(ctx, h.addRater(t, 9), store.ID, domain.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListUserRatings(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.addRater(t, 1)
	other := h.addRater(t, 2)
	for _, name := range []string{"First Store", "Second Store"} {
		h.rate(t, user, h.addStore(t, name, nil).ID, 4)
	}

	page, err := h.ratings.ListForUser(ctx, user, user.ID, domain.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	require.NotNil(t, page.Data[0].Store)

	page, err = h.ratings.ListForUser(ctx, h.admin, user.ID, domain.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.Total)

	_, err = h.ratings.ListForUser(ctx, other, user.ID, domain.PageQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMineWithoutRating(t *testing.T) {
	h := newHarness(t)
	store := h.addStore(t, "Corner Bakery", nil)
	_, err := h.ratings.Mine(context.Background(), h.addRater(t, 1), store.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
