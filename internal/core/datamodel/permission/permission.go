package permission

import (
	"time"
)

// Permission is immutable reference data seeded by migrations.
type Permission struct {
	ID          string `gorm:"primaryKey;column:id"`
	Code        string `gorm:"column:code;not null;uniqueIndex"`
	Name        string `gorm:"column:name;not null"`
	Description string `gorm:"column:description"`
	Category    string `gorm:"column:category;not null"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Grant records one grant event. A revoke closes the row by stamping
// revoked_at; rows are never deleted. At most one open row may exist
// per (user_id, permission_id), backed by a partial unique index.
type Grant struct {
	ID           string     `gorm:"primaryKey;column:id"`
	UserID       string     `gorm:"column:user_id;not null;index"`
	PermissionID string     `gorm:"column:permission_id;not null;index"`
	GrantedAt    time.Time  `gorm:"column:granted_at;not null"`
	GrantedBy    *string    `gorm:"column:granted_by"`
	RevokedAt    *time.Time `gorm:"column:revoked_at"`
	RevokedBy    *string    `gorm:"column:revoked_by"`
}

func (Grant) TableName() string {
	return "permission_grants"
}
