package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Bounds of a rating value
const (
	MinRating = 1
	MaxRating = 5
)

// Rating Model. A user has at most one rating per store.
type Rating struct {
	ID        string    `gorm:"primaryKey;size:36"`                                                  // Primary key (UUID)
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_rating_user_store,priority:1"`       // Rating user
	StoreID   string    `gorm:"size:36;not null;uniqueIndex:idx_rating_user_store,priority:2;index"` // Rated store
	Rating    int       `gorm:"not null"`                                                            // Value in [1,5]
	User      *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`     // Rating user
	Store     *Store    `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`    // Rated store
	CreatedAt time.Time `gorm:"index"`                                                               // Creation time
	UpdatedAt time.Time // Last update time
}

// BeforeCreate assigns a UUID when the caller did not set one
func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
