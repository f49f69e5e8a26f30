package postgres

import (
	"errors"
	"strings"
	"time"

	userDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/user"
	"github.com/dmarquez/inventory-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User, passwordHash string) error {
	dm := &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: passwordHash,
		Role:         u.Role,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		CreatedBy:    u.CreatedBy,
	}
	if err := r.db.Create(dm).Error; err != nil {
		if isDuplicateKey(err) {
			return user.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetDeletedByID(id string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ? AND deleted_at IS NOT NULL", id).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

// EmailInUse checks uniqueness among non-deleted accounts only.
func (r *UserRepository) EmailInUse(email string) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("email = ? AND deleted_at IS NULL", email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(u *user.User) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND deleted_at IS NULL", u.ID).
		Updates(map[string]interface{}{
			"name":       u.Name,
			"role":       u.Role,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetActive(id string, active bool) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) MarkDeleted(id string, deletedAt time.Time, deletedBy string) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": deletedAt,
			"deleted_by": deletedBy,
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ClearDeleted(id string) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": nil,
			"deleted_by": nil,
			"is_active":  true,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotDeleted
	}
	return nil
}

func (r *UserRepository) List(includeDeleted bool) ([]*user.User, error) {
	query := r.db.Model(&userDatamodel.User{})
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}

	var dms []*userDatamodel.User
	if err := query.Order("created_at ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(dms), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
