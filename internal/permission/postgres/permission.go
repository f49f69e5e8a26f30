package postgres

import (
	"errors"
	"strings"
	"time"

	permissionDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/permission"
	"github.com/dmarquez/inventory-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) ListPermissions() ([]*permission.Permission, error) {
	var dms []*permissionDatamodel.Permission
	err := r.db.Order("category, code").Find(&dms).Error
	if err != nil {
		return nil, err
	}

	perms := make([]*permission.Permission, len(dms))
	for i, dm := range dms {
		perms[i] = permission.PermissionFromDataModel(dm)
	}
	return perms, nil
}

func (r *PermissionRepository) GetPermissionsByIDs(ids []string) ([]*permission.Permission, error) {
	if len(ids) == 0 {
		return []*permission.Permission{}, nil
	}

	var dms []*permissionDatamodel.Permission
	err := r.db.Where("id IN ?", ids).Find(&dms).Error
	if err != nil {
		return nil, err
	}

	perms := make([]*permission.Permission, len(dms))
	for i, dm := range dms {
		perms[i] = permission.PermissionFromDataModel(dm)
	}
	return perms, nil
}

func (r *PermissionRepository) OpenGrants(userID string) ([]*permission.Grant, error) {
	var dms []*permissionDatamodel.Grant
	err := r.db.Where("user_id = ? AND revoked_at IS NULL", userID).Find(&dms).Error
	if err != nil {
		return nil, err
	}

	grants := make([]*permission.Grant, len(dms))
	for i, dm := range dms {
		grants[i] = permission.FromDataModel(dm)
	}
	return grants, nil
}

// CreateGrant inserts one grant event. The pre-check keeps the common
// duplicate readable; the partial unique index on open grants catches
// the race between two concurrent grants of the same pair.
func (r *PermissionRepository) CreateGrant(grant *permission.Grant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&permissionDatamodel.Grant{}).
			Where("user_id = ? AND permission_id = ? AND revoked_at IS NULL",
				grant.UserID, grant.PermissionID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return permission.ErrDuplicateGrant
		}

		if err := tx.Create(permission.ToDataModel(grant)).Error; err != nil {
			if isDuplicateKey(err) {
				return permission.ErrDuplicateGrant
			}
			return err
		}
		return nil
	})
}

// CloseGrant stamps revoked_at/revoked_by on the single open grant for
// the pair. Returns the number of rows closed (0 means no-op).
func (r *PermissionRepository) CloseGrant(userID, permissionID string, revokedAt time.Time, revokedBy string) (int64, error) {
	result := r.db.Model(&permissionDatamodel.Grant{}).
		Where("user_id = ? AND permission_id = ? AND revoked_at IS NULL", userID, permissionID).
		Updates(map[string]interface{}{
			"revoked_at": revokedAt,
			"revoked_by": revokedBy,
		})
	return result.RowsAffected, result.Error
}

// ApplyReconcile applies the computed grant/revoke delta in one
// transaction so the caller observes either the whole new set or the
// old one.
func (r *PermissionRepository) ApplyReconcile(userID string, toGrant []*permission.Grant, toRevokePermissionIDs []string, revokedAt time.Time, revokedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if len(toRevokePermissionIDs) > 0 {
			err := tx.Model(&permissionDatamodel.Grant{}).
				Where("user_id = ? AND permission_id IN ? AND revoked_at IS NULL", userID, toRevokePermissionIDs).
				Updates(map[string]interface{}{
					"revoked_at": revokedAt,
					"revoked_by": revokedBy,
				}).Error
			if err != nil {
				return err
			}
		}

		for _, grant := range toGrant {
			if err := tx.Create(permission.ToDataModel(grant)).Error; err != nil {
				if isDuplicateKey(err) {
					return permission.ErrDuplicateGrant
				}
				return err
			}
		}

		return nil
	})
}

func (r *PermissionRepository) History(userID string) ([]*permission.Grant, error) {
	var dms []*permissionDatamodel.Grant
	err := r.db.Where("user_id = ?", userID).
		Order("granted_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	grants := make([]*permission.Grant, len(dms))
	for i, dm := range dms {
		grants[i] = permission.FromDataModel(dm)
	}
	return grants, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
