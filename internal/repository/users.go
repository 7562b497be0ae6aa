package repository

import (
	"context" // Request scoped cancellation

	"gorm.io/gorm" // GORM ORM library

	"store_rating/internal/domain" // Domain models
)

// UserFilter restricts a user listing
type UserFilter struct {
	Search string       // Substring of name, email or address
	Role   *domain.Role // Single role, nil for all
}

// CreateUser inserts u; a duplicate email is a Conflict
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return translate(err, "user with this email")
	}
	return nil
}

// GetUser fetches a user by id
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

// GetUserByEmail fetches a user by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

// EmailTaken reports whether another user than exceptID uses email
func (r *Repository) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, translate(err, "user")
	}
	return n > 0, nil
}

// UpdateUser applies fields to the user with id. Callers resolve the user first;
// MySQL reports zero affected rows for unchanged values.
func (r *Repository) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return translate(err, "user with this email")
	}
	return nil
}

// DeleteUser removes a user together with its ratings. A store it owned
// becomes ownerless.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Store{}).Where("owner_id = ?", id).Update("owner_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate(err, "user")
}

func (r *Repository) userQuery(ctx context.Context, f UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.User{})
	if f.Role != nil {
		q = q.Where("role = ?", *f.Role)
	}
	return searchAny(q, f.Search, "name", "email", "address")
}

// ListUsers returns one page of users matching f and the total match count
func (r *Repository) ListUsers(ctx context.Context, f UserFilter, s Sort, page domain.PageQuery) ([]domain.User, int64, error) {
	var total int64
	if err := r.userQuery(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "user")
	}
	var users []domain.User
	if err := order(r.userQuery(ctx, f), s).Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return nil, 0, translate(err, "user")
	}
	return users, total, nil
}

// CountUsersByRole returns the number of users per role; every role is present
func (r *Repository) CountUsersByRole(ctx context.Context) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  domain.Role
		Users int64
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).
		Select("role, COUNT(*) AS users").Group("role").Scan(&rows).Error; err != nil {
		return nil, translate(err, "user")
	}
	counts := make(map[domain.Role]int64, len(domain.Roles))
	for _, role := range domain.Roles {
		counts[role] = 0
	}
	for _, row := range rows {
		counts[row.Role] = row.Users
	}
	return counts, nil
}
