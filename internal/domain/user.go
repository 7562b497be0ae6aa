package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID generation for primary keys
	"gorm.io/gorm"           // GORM ORM library
)

// Role is the access role carried by every user.
type Role string

// Roles known to the access policy
const (
	RoleAdmin      Role = "ADMIN"       // Manages users and stores
	RoleStoreOwner Role = "STORE_OWNER" // Owns at most one store
	RoleUser       Role = "USER"        // Rates stores
)

// Roles lists every valid role in a stable order.
var Roles = []Role{RoleAdmin, RoleStoreOwner, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User Model
type User struct {
	ID        string    `gorm:"primaryKey;size:36"`                  // Primary key (UUID)
	Name      string    `gorm:"size:60;not null"`                    // Display name
	Email     string    `gorm:"size:120;uniqueIndex;not null"`       // Unique email
	Password  string    `gorm:"not null" json:"-"`                   // Bcrypt hash, never plaintext
	Address   *string   `gorm:"size:400"`                            // Optional postal address
	Role      Role      `gorm:"size:16;not null;default:USER;index"` // Access role
	CreatedAt time.Time // Creation time
	UpdatedAt time.Time // Last update time
}

// BeforeCreate assigns a UUID when the caller did not set one
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
