package user

import (
	"time"
)

// User is the persistence model for the users table. Email uniqueness
// is scoped to non-deleted rows by a partial index in the migrations,
// mirroring the item code lifecycle.
type User struct {
	ID           string     `gorm:"primaryKey;column:id"`
	Email        string     `gorm:"column:email;not null"`
	Name         string     `gorm:"column:name;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;not null;default:USER"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	CreatedBy    *string    `gorm:"column:created_by"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
	DeletedBy    *string    `gorm:"column:deleted_by"`
}

func (User) TableName() string {
	return "users"
}
