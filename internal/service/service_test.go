package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"store_rating/internal/db"
	"store_rating/internal/domain"
	"store_rating/internal/policy"
	"store_rating/internal/repository"
	"store_rating/internal/utils"
)

const testPassword = "Secret@123"

type harness struct {
	repo    *repository.Repository
	stores  *StoreService
	ratings *RatingService
	users   *UserService
	admin   *domain.Actor
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	require.NoError(t, db.RegisterSQLiteFunctions())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := repository.New(openDB(t))
	p := policy.Default()
	hasher := utils.BcryptHasher{Cost: bcrypt.MinCost}
	h := &harness{
		repo:    repo,
		stores:  NewStoreService(repo, p, NewAggregator(repo), hasher),
		ratings: NewRatingService(repo, p),
		users:   NewUserService(repo, p, hasher),
	}
	h.admin = h.addUser(t, "System Administrator Account", "admin@example.com", domain.RoleAdmin)
	return h
}

func (h *harness) addUser(t *testing.T, name, email string, role domain.Role) *domain.Actor {
	t.Helper()
	hash, err := utils.BcryptHasher{Cost: bcrypt.MinCost}.Hash(testPassword)
	require.NoError(t, err)
	u := &domain.User{Name: name, Email: email, Password: hash, Role: role}
	require.NoError(t, h.repo.CreateUser(context.Background(), u))
	return &domain.Actor{ID: u.ID, Role: u.Role}
}

func (h *harness) addRater(t *testing.T, i int) *domain.Actor {
	t.Helper()
	return h.addUser(t, fmt.Sprintf("Regular Test User Number %02d", i), fmt.Sprintf("user%02d@example.com", i), domain.RoleUser)
}

func (h *harness) addStore(t *testing.T, name string, ownerID *string) StoreView {
	t.Helper()
	created, err := h.stores.Create(context.Background(), h.admin, CreateStoreInput{Name: name, OwnerID: ownerID})
	require.NoError(t, err)
	return created.Store
}

func (h *harness) rate(t *testing.T, actor *domain.Actor, storeID string, value int) {
	t.Helper()
	_, err := h.ratings.Upsert(context.Background(), actor, RatingInput{StoreID: storeID, Rating: value})
	require.NoError(t, err)
}
