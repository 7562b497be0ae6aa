package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store_rating/internal/domain"
)

func TestListUsersFilterAndPage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		h.addRater(t, i)
	}
	h.addUser(t, "Store Owner Account Name", "owner@example.com", domain.RoleStoreOwner)

	res, err := h.users.List(ctx, h.admin, UserListQuery{Page: 2, Limit: 10, FilterBy: "USER"})
	require.NoError(t, err)
	assert.Len(t, res.Data, 5)
	assert.Equal(t, int64(15), res.Meta.Total)
	assert.Equal(t, 2, res.Meta.TotalPages)
	for _, u := range res.Data {
		assert.Equal(t, domain.RoleUser, u.Role)
	}

	res, err = h.users.List(ctx, h.admin, UserListQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(17), res.Meta.Total)
}

func TestListUsersSortAndSearch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		h.addRater(t, i)
	}

	res, err := h.users.List(ctx, h.admin, UserListQuery{SortBy: "email", SortOrder: "ASC"})
	require.NoError(t, err)
	require.Len(t, res.Data, 4)
	assert.Equal(t, "admin@example.com", res.Data[0].Email)
	assert.Equal(t, "user02@example.com", res.Data[3].Email)

	res, err = h.users.List(ctx, h.admin, UserListQuery{Search: "NUMBER 01"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "user01@example.com", res.Data[0].Email)
}

func TestListUsersRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.addRater(t, 1)

	_, err := h.users.List(ctx, h.admin, UserListQuery{FilterBy: "GUEST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = h.users.List(ctx, h.admin, UserListQuery{SortBy: "password"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = h.users.List(ctx, user, UserListQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.users.List(ctx, nil, UserListQuery{})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := RegisterInput{Name: "A Brand New Rating User", Email: " New@Example.com ", Password: testPassword}

	u, err := h.users.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = h.users.Register(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	valid := RegisterInput{Name: "A Brand New Rating User", Email: "new@example.com", Password: testPassword}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"short name", func(in *RegisterInput) { in.Name = "Short" }},
		{"long name", func(in *RegisterInput) { in.Name = fmt.Sprintf("%061d", 0) }},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"password without upper", func(in *RegisterInput) { in.Password = "secret@123" }},
		{"password without special", func(in *RegisterInput) { in.Password = "Secret1234" }},
		{"password too long", func(in *RegisterInput) { in.Password = "Secret@123456789x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := h.users.Register(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateUserByAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	owner, err := h.users.Create(ctx, h.admin, CreateUserInput{
		Name:     "Store Owner Created By Admin",
		Email:    "owner@example.com",
		Password: testPassword,
		Role:     domain.RoleStoreOwner,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStoreOwner, owner.Role)

	admin, err := h.users.CreateAdmin(ctx, h.admin, RegisterInput{
		Name:     "Second Administrator Account",
		Email:    "admin2@example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	_, err = h.users.Create(ctx, &domain.Actor{ID: owner.ID, Role: owner.Role}, CreateUserInput{
		Name:     "Should Not Be Created Here",
		Email:    "nope@example.com",
		Password: testPassword,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	counts, err := h.users.Counts(ctx, h.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Total)
	assert.Equal(t, int64(2), counts.ByRole[domain.RoleAdmin])
	assert.Equal(t, int64(1), counts.ByRole[domain.RoleStoreOwner])
	assert.Zero(t, counts.ByRole[domain.RoleUser])
}

func TestUpdateUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.addRater(t, 1)
	other := h.addRater(t, 2)

	name := "Renamed Regular Test User"
	updated, err := h.users.Update(ctx, user, user.ID, UpdateUserInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = h.users.Update(ctx, other, user.ID, UpdateUserInput{Name: &name})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	role := domain.RoleAdmin
	_, err = h.users.Update(ctx, user, user.ID, UpdateUserInput{Role: &role})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	taken := "USER02@example.com"
	_, err = h.users.Update(ctx, user, user.ID, UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)

	role = domain.RoleStoreOwner
	updated, err = h.users.Update(ctx, h.admin, user.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStoreOwner, updated.Role)
}

func TestUpdatePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.addRater(t, 1)

	err := h.users.UpdatePassword(ctx, user, UpdatePasswordInput{CurrentPassword: "Wrong@123", NewPassword: "Changed@123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = h.users.UpdatePassword(ctx, user, UpdatePasswordInput{CurrentPassword: testPassword, NewPassword: "weak"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = h.users.UpdatePassword(ctx, nil, UpdatePasswordInput{CurrentPassword: testPassword, NewPassword: "Changed@123"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, h.users.UpdatePassword(ctx, user, UpdatePasswordInput{CurrentPassword: testPassword, NewPassword: "Changed@123"}))
	u, err := h.repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Changed@123", u.Password)
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.addUser(t, "Store Owner Account Name", "owner@example.com", domain.RoleStoreOwner)
	store := h.addStore(t, "Owned Store", &owner.ID)
	user := h.addRater(t, 1)
	h.rate(t, user, store.ID, 4)

	assert.ErrorIs(t, h.users.Delete(ctx, user, owner.ID), domain.ErrForbidden)
	assert.ErrorIs(t, h.users.Delete(ctx, h.admin, h.admin.ID), domain.ErrInvalidInput)

	require.NoError(t, h.users.Delete(ctx, h.admin, user.ID))
	agg, err := h.stores.Aggregate(ctx, nil, store.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Aggregate{}, agg)

	require.NoError(t, h.users.Delete(ctx, h.admin, owner.ID))
	got, err := h.stores.Get(ctx, nil, store.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Owner)

	_, err = h.users.Get(ctx, h.admin, owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, h.users.Delete(ctx, h.admin, owner.ID), domain.ErrNotFound)
}
