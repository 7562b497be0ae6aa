package service

import (
	"context" // Request scoped cancellation
	"sort"    // In-memory average sort
	"strings" // Input normalization

	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain"     // Domain models and error kinds
	"store_rating/internal/policy"     // Access policy
	"store_rating/internal/repository" // Entity store
	"store_rating/internal/utils"      // Owner password generation
)

// SortByAverageRating sorts stores by their computed average rating.
const SortByAverageRating = "averageRating"

// storeSortColumns maps sortable store keys to stored columns.
var storeSortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// StoreListQuery selects a page of stores.
type StoreListQuery struct {
	Page      int    // 1-based page
	Limit     int    // Page size, capped at domain.MaxLimit
	Search    string // Substring of name or address
	SortBy    string // name, createdAt, updatedAt or averageRating
	SortOrder string // ASC or DESC
}

// NewOwnerInput describes a store owner created together with a store. A
// password is generated when none is given.
type NewOwnerInput struct {
	Name     string  `json:"name" validate:"required,min=20,max=60"`
	Email    string  `json:"email" validate:"required,email,max=120"`
	Password string  `json:"password" validate:"omitempty,password"`
	Address  *string `json:"address" validate:"omitempty,max=400"`
}

// CreateStoreInput creates a store that is ownerless, owned by an existing
// STORE_OWNER (OwnerID) or owned by a new user (Owner).
type CreateStoreInput struct {
	Name    string         `json:"name" validate:"required,max=100"`
	Address *string        `json:"address" validate:"omitempty,max=400"`
	OwnerID *string        `json:"ownerId" validate:"omitempty,uuid"` // Existing STORE_OWNER
	Owner   *NewOwnerInput `json:"owner"`                             // New STORE_OWNER account
}

// UpdateStoreInput changes the given store fields.
type UpdateStoreInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Address *string `json:"address" validate:"omitempty,max=400"`
}

// Credentials are returned once for a generated owner password.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"` // Only set when generated
}

// CreatedStore is the result of CreateStore.
type CreatedStore struct {
	Store       StoreView    `json:"store"`
	Credentials *Credentials `json:"credentials,omitempty"` // Present when an owner was created
}

// StoreService lists and manages stores.
type StoreService struct {
	repo       *repository.Repository // Store rows
	policy     *policy.Policy         // Access rules
	aggregator *Aggregator            // Fresh rating aggregates
	passwords  Passwords              // Hashing for new owners
}

// NewStoreService wires a StoreService.
func NewStoreService(repo *repository.Repository, p *policy.Policy, aggregator *Aggregator, passwords Passwords) *StoreService {
	return &StoreService{repo: repo, policy: p, aggregator: aggregator, passwords: passwords}
}

// List returns a page of stores with their aggregates. Sorting by
// averageRating loads every match, sorts in memory and slices the page; other
// keys are sorted and paginated by the database. Both produce the same pages.
// For USER actors each store carries the actor's own rating.
func (s *StoreService) List(ctx context.Context, actor *domain.Actor, q StoreListQuery) (domain.Page[StoreView], error) {
	if err := s.policy.Authorize(actor, policy.ReadStore, policy.Resource{}); err != nil {
		return domain.Page[StoreView]{}, err
	}
	key, desc, err := sortSpec(q.SortBy, q.SortOrder, storeSortColumns, SortByAverageRating)
	if err != nil {
		return domain.Page[StoreView]{}, err
	}
	page := domain.PageQuery{Page: q.Page, Limit: q.Limit}.Normalize() // Defaults and caps

	var views []StoreView
	var total int64
	if key == SortByAverageRating {
		views, total, err = s.listByAverage(ctx, q.Search, desc, page)
	} else {
		views, total, err = s.listInStorage(ctx, q.Search, repository.Sort{Column: storeSortColumns[key], Desc: desc}, page)
	}
	if err != nil {
		return domain.Page[StoreView]{}, err
	}
	if err := s.attachMyRatings(ctx, actor, views); err != nil {
		return domain.Page[StoreView]{}, err
	}
	return domain.Page[StoreView]{Data: views, Meta: domain.NewMeta(page, total)}, nil
}

// listInStorage sorts and paginates in the database
func (s *StoreService) listInStorage(ctx context.Context, search string, order repository.Sort, page domain.PageQuery) ([]StoreView, int64, error) {
	stores, total, err := s.repo.ListStores(ctx, search, order, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.withAggregates(ctx, stores)
	return views, total, err
}

// listByAverage loads every match, sorts by average in memory and slices the page
func (s *StoreService) listByAverage(ctx context.Context, search string, desc bool, page domain.PageQuery) ([]StoreView, int64, error) {
	stores, err := s.repo.ListAllStores(ctx, search) // Every match, unpaginated
	if err != nil {
		return nil, 0, err
	}
	views, err := s.withAggregates(ctx, stores)
	if err != nil {
		return nil, 0, err
	}
	sortByAverage(views, desc)
	total := len(views)
	start := min(page.Offset(), total) // Past the last page yields an empty slice
	end := min(start+page.Limit, total)
	return views[start:end], int64(total), nil
}

// sortByAverage orders views by average rating, ties by id ascending.
func sortByAverage(views []StoreView, desc bool) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].AverageRating, views[j].AverageRating
		if a != b {
			if desc {
				return a > b
			}
			return a < b
		}
		return views[i].ID < views[j].ID
	})
}

// withAggregates pairs stores with their rating aggregates
func (s *StoreService) withAggregates(ctx context.Context, stores []domain.Store) ([]StoreView, error) {
	ids := make([]string, len(stores))
	for i := range stores {
		ids[i] = stores[i].ID
	}
	aggs, err := s.aggregator.ForStores(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]StoreView, len(stores))
	for i := range stores {
		views[i] = newStoreView(&stores[i], aggs[stores[i].ID])
	}
	return views, nil
}

// attachMyRatings fills MyRating for a USER actor
func (s *StoreService) attachMyRatings(ctx context.Context, actor *domain.Actor, views []StoreView) error {
	if actor == nil || actor.Role != domain.RoleUser || len(views) == 0 {
		return nil // Only USER actors carry myRating
	}
	ids := make([]string, len(views))
	for i := range views {
		ids[i] = views[i].ID
	}
	mine, err := s.repo.UserRatings(ctx, actor.ID, ids) // Store ID to rating value
	if err != nil {
		return err
	}
	for i := range views {
		if v, ok := mine[views[i].ID]; ok {
			views[i].MyRating = &v
		}
	}
	return nil
}

// Get returns one store with its aggregate.
func (s *StoreService) Get(ctx context.Context, actor *domain.Actor, id string) (StoreView, error) {
	if err := s.policy.Authorize(actor, policy.ReadStore, policy.Resource{}); err != nil {
		return StoreView{}, err
	}
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return StoreView{}, err
	}
	return s.view(ctx, store)
}

// Aggregate returns the average and count of ratings of a store.
func (s *StoreService) Aggregate(ctx context.Context, actor *domain.Actor, id string) (domain.Aggregate, error) {
	if err := s.policy.Authorize(actor, policy.ReadStore, policy.Resource{}); err != nil {
		return domain.Aggregate{}, err
	}
	if _, err := s.repo.GetStore(ctx, id); err != nil {
		return domain.Aggregate{}, err
	}
	return s.aggregator.AverageAndCount(ctx, id)
}

// Mine returns the store owned by a STORE_OWNER actor.
func (s *StoreService) Mine(ctx context.Context, actor *domain.Actor) (StoreView, error) {
	if err := s.policy.Authorize(actor, policy.ReadOwnStore, policy.Resource{}); err != nil {
		return StoreView{}, err
	}
	store, err := s.repo.GetStoreByOwner(ctx, actor.ID) // NotFound when the owner has no store
	if err != nil {
		return StoreView{}, err
	}
	return s.view(ctx, store)
}

// Count returns the number of stores.
func (s *StoreService) Count(ctx context.Context, actor *domain.Actor) (int64, error) {
	if err := s.policy.Authorize(actor, policy.CountStores, policy.Resource{}); err != nil {
		return 0, err
	}
	return s.repo.CountStores(ctx)
}

// view builds the StoreView of a single store
func (s *StoreService) view(ctx context.Context, store *domain.Store) (StoreView, error) {
	agg, err := s.aggregator.AverageAndCount(ctx, store.ID)
	if err != nil {
		return StoreView{}, err
	}
	return newStoreView(store, agg), nil
}

// Create adds a store. With OwnerID the user must exist, be a STORE_OWNER and
// not own a store yet. With Owner the owner account and the store are created
// in one transaction.
func (s *StoreService) Create(ctx context.Context, actor *domain.Actor, in CreateStoreInput) (CreatedStore, error) {
	if err := s.policy.Authorize(actor, policy.CreateStore, policy.Resource{}); err != nil {
		return CreatedStore{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Address = optional(in.Address)
	in.OwnerID = optional(in.OwnerID) // Blank ownerId means none
	if err := check(in); err != nil {
		return CreatedStore{}, err
	}
	if in.OwnerID != nil && in.Owner != nil {
		return CreatedStore{}, domain.InvalidInput("ownerId cannot be combined with owner")
	}

	store := &domain.Store{Name: in.Name, Address: in.Address}
	var creds *Credentials
	var err error
	switch {
	case in.Owner != nil:
		creds, err = s.createWithNewOwner(ctx, store, in.Owner)
	case in.OwnerID != nil:
		err = s.createForOwner(ctx, store, *in.OwnerID)
	default: // Ownerless store
		err = s.repo.CreateStore(ctx, store)
	}
	if err != nil {
		return CreatedStore{}, err
	}

	logrus.WithFields(logrus.Fields{
		"store_id": store.ID,
		"owner_id": deref(store.OwnerID),
		"actor_id": actor.ID,
	}).Info("Store created")

	created, err := s.repo.GetStore(ctx, store.ID)
	if err != nil {
		return CreatedStore{}, err
	}
	return CreatedStore{Store: newStoreView(created, domain.Aggregate{}), Credentials: creds}, nil
}

// createForOwner links store to an existing STORE_OWNER without a store
func (s *StoreService) createForOwner(ctx context.Context, store *domain.Store, ownerID string) error {
	owner, err := s.repo.GetUser(ctx, ownerID)
	if isNotFound(err) {
		return domain.NotFound("store owner not found")
	} else if err != nil {
		return err
	}
	if owner.Role != domain.RoleStoreOwner {
		return domain.InvalidInput("user must be a store owner")
	}
	if _, err := s.repo.GetStoreByOwner(ctx, ownerID); err == nil {
		return domain.Conflict("user already owns a store") // One store per owner
	} else if !isNotFound(err) {
		return err
	}
	store.OwnerID = &owner.ID // Link the existing owner
	return s.repo.CreateStore(ctx, store)
}

// createWithNewOwner creates the owner account and the store atomically
func (s *StoreService) createWithNewOwner(ctx context.Context, store *domain.Store, in *NewOwnerInput) (*Credentials, error) {
	email := normalizeEmail(in.Email)
	password := in.Password
	generated := password == "" // Generate when not supplied
	if generated {
		var err error
		if password, err = utils.GeneratePassword(); err != nil {
			return nil, err
		}
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		taken, err := tx.EmailTaken(ctx, email, "")
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("user with this email already exists") // Rolls back the transaction
		}
		owner := &domain.User{
			Name:     strings.TrimSpace(in.Name),
			Email:    email,
			Password: hash,
			Address:  optional(in.Address),
			Role:     domain.RoleStoreOwner,
		}
		if err := tx.CreateUser(ctx, owner); err != nil {
			return err
		}
		store.OwnerID = &owner.ID // Link the new owner
		return tx.CreateStore(ctx, store)
	})
	if err != nil {
		return nil, err
	}
	creds := &Credentials{Email: email}
	if generated {
		creds.Password = password // Shown once, never stored in plain text
	}
	return creds, nil
}

// Update changes the name or address of a store.
func (s *StoreService) Update(ctx context.Context, actor *domain.Actor, id string, in UpdateStoreInput) (StoreView, error) {
	if err := s.policy.Authorize(actor, policy.UpdateStore, policy.Resource{}); err != nil {
		return StoreView{}, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := check(in); err != nil {
		return StoreView{}, err
	}
	if _, err := s.repo.GetStore(ctx, id); err != nil {
		return StoreView{}, err
	}

	fields := map[string]any{} // Only provided fields are written
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Address != nil {
		fields["address"] = optional(in.Address)
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateStore(ctx, id, fields); err != nil {
			return StoreView{}, err
		}
		logrus.WithFields(logrus.Fields{"store_id": id, "actor_id": actor.ID}).Info("Store updated")
	}
	store, err := s.repo.GetStore(ctx, id)
	if err != nil {
		return StoreView{}, err
	}
	return s.view(ctx, store)
}

// Delete removes a store and its ratings.
func (s *StoreService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := s.policy.Authorize(actor, policy.DeleteStore, policy.Resource{}); err != nil {
		return err
	}
	if err := s.repo.DeleteStore(ctx, id); err != nil { // Ratings go with the store
		return err
	}
	logrus.WithFields(logrus.Fields{"store_id": id, "actor_id": actor.ID}).Info("Store deleted")
	return nil
}
