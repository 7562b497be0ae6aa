package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Store Model
type Store struct {
	ID        string    `gorm:"primaryKey;size:36"`                                                // Primary key (UUID)
	Name      string    `gorm:"size:100;not null;index"`                                           // Store name
	Address   *string   `gorm:"size:400"`                                                          // Optional address
	OwnerID   *string   `gorm:"size:36;uniqueIndex"`                                               // Optional owner, one store per owner
	Owner     *User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // Owning user
	CreatedAt time.Time `gorm:"index"`                                                             // Creation time
	UpdatedAt time.Time // Last update time
}

// BeforeCreate assigns a UUID when the caller did not set one
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Aggregate is the average rating and number of ratings of a store.
type Aggregate struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// NewAggregate derives an Aggregate from a rating sum and count. A store
// without ratings averages 0.
func NewAggregate(sum, count int64) Aggregate {
	if count <= 0 {
		return Aggregate{}
	}
	return Aggregate{Average: float64(sum) / float64(count), Count: count}
}
