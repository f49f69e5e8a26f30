package permission

import (
	"errors"
	"time"

	permissionDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/permission"
)

// Permission is a named capability, immutable reference data.
type Permission struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

// Grant is one grant event in the append-only ledger. Revoking stamps
// RevokedAt/RevokedBy; nothing is ever deleted.
type Grant struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	PermissionID string     `json:"permission_id"`
	GrantedAt    time.Time  `json:"granted_at"`
	GrantedBy    *string    `json:"granted_by,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	RevokedBy    *string    `json:"revoked_by,omitempty"`
}

func (g *Grant) IsOpen() bool {
	return g.RevokedAt == nil
}

var (
	ErrDuplicateGrant     = errors.New("permission already granted")
	ErrPermissionNotFound = errors.New("permission not found")
)

func ToDataModel(g *Grant) *permissionDatamodel.Grant {
	return &permissionDatamodel.Grant{
		ID:           g.ID,
		UserID:       g.UserID,
		PermissionID: g.PermissionID,
		GrantedAt:    g.GrantedAt,
		GrantedBy:    g.GrantedBy,
		RevokedAt:    g.RevokedAt,
		RevokedBy:    g.RevokedBy,
	}
}

func FromDataModel(g *permissionDatamodel.Grant) *Grant {
	return &Grant{
		ID:           g.ID,
		UserID:       g.UserID,
		PermissionID: g.PermissionID,
		GrantedAt:    g.GrantedAt,
		GrantedBy:    g.GrantedBy,
		RevokedAt:    g.RevokedAt,
		RevokedBy:    g.RevokedBy,
	}
}

func PermissionFromDataModel(p *permissionDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
	}
}
