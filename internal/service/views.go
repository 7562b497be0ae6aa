package service

import (
	"time" // Timestamps

	"store_rating/internal/domain" // Domain models
)

// UserView is a user without its credential.
type UserView struct {
	ID        string      `json:"id"` // User UUID
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Address   *string     `json:"address"` // Nil when not provided
	Role      domain.Role `json:"role"`    // ADMIN, USER or STORE_OWNER
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// newUserView drops the password hash from u
func newUserView(u *domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PersonSummary identifies an owner or a rater.
type PersonSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newPersonSummary(u *domain.User) *PersonSummary {
	if u == nil {
		return nil // Ownerless store or unloaded association
	}
	return &PersonSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// StoreView is a store with its owner and rating aggregate.
type StoreView struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       *string        `json:"address"`
	Owner         *PersonSummary `json:"owner"`              // Nil for ownerless stores
	AverageRating float64        `json:"averageRating"`      // 0 when unrated
	TotalRatings  int64          `json:"totalRatings"`       // Number of ratings
	MyRating      *int           `json:"myRating,omitempty"` // Acting USER's rating, if any
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func newStoreView(s *domain.Store, agg domain.Aggregate) StoreView {
	return StoreView{
		ID:            s.ID,
		Name:          s.Name,
		Address:       s.Address,
		Owner:         newPersonSummary(s.Owner),
		AverageRating: agg.Average,
		TotalRatings:  agg.Count,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// StoreSummary identifies a rated store.
type StoreSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

// RatingView is a rating with either its rater or its store attached.
type RatingView struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	StoreID   string         `json:"storeId"`
	Rating    int            `json:"rating"`          // 1 to 5
	User      *PersonSummary `json:"user,omitempty"`  // Rater, set in store listings
	Store     *StoreSummary  `json:"store,omitempty"` // Store, set in user listings
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func newRatingView(r *domain.Rating) RatingView {
	v := RatingView{
		ID:        r.ID,
		UserID:    r.UserID,
		StoreID:   r.StoreID,
		Rating:    r.Rating,
		User:      newPersonSummary(r.User),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Store != nil {
		v.Store = &StoreSummary{ID: r.Store.ID, Name: r.Store.Name, Address: r.Store.Address}
	}
	return v
}
