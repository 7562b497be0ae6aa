// Package repository is the entity store: every read and write of users,
// stores and ratings goes through it. Methods return plain domain values and
// translate storage failures into domain error kinds.
package repository

import (
	"context" // Request scoped cancellation
	"errors"  // Error inspection
	"strings" // Search pattern escaping

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Order and conflict clauses

	"store_rating/internal/domain" // Domain models and error kinds
)

// Repository wraps a gorm handle. A Repository created inside WithTx is bound
// to that transaction.
type Repository struct {
	db *gorm.DB
}

// New returns a Repository backed by db
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx runs fn inside a database transaction; any returned error rolls it back
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
	return translate(err, "record")
}

// Sort is a storage-side ordering. Column must come from a whitelist.
type Sort struct {
	Column string
	Desc   bool
}

// order applies s followed by the id tie-breaker so pages stay deterministic
func order(q *gorm.DB, s Sort) *gorm.DB {
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

// translate maps gorm errors onto domain error kinds
func translate(err error, what string) error {
	var de *domain.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NotFound("%s references a missing record", what)
	default:
		return domain.StorageUnavailable(err)
	}
}

// likeEscape is the escape character used in LIKE patterns. '!' behaves the
// same on MySQL, PostgreSQL and SQLite.
const likeEscape = "!"

// containsPattern builds a lower-cased LIKE pattern matching s as a substring
func containsPattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_").Replace(s)
	return "%" + s + "%"
}

// searchAny restricts q to rows where any of columns contains term, ignoring case
func searchAny(q *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}
	pattern := containsPattern(term)
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		parts[i] = "LOWER(" + c + ") LIKE ? ESCAPE '" + likeEscape + "'"
		args[i] = pattern
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}
