package postgres

import (
	"database/sql"
	"errors"

	"github.com/dmarquez/inventory-management/internal/auth"
	userDatamodel "github.com/dmarquez/inventory-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetCredentialByEmail resolves credentials for any account, deleted
// included. Deleted/disabled gating is the service's job so it can
// report the distinct failure instead of a generic credential error.
// Email uniqueness is scoped to non-deleted rows, so prefer the live
// account when a deleted one shares the address.
func (r *Repository) GetCredentialByEmail(email string) (string, string, error) {
	var passwordHash string
	var userID string
	query := `SELECT id, password_hash FROM users WHERE email = ?
	          ORDER BY deleted_at IS NOT NULL, created_at DESC LIMIT 1`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&userID, &passwordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", auth.ErrInvalidCredentials
		}
		return "", "", err
	}
	return passwordHash, userID, nil
}

func (r *Repository) GetProfile(userID string) (*auth.Profile, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", userID).First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrProfileNotFound
		}
		return nil, err
	}

	return &auth.Profile{
		ID:        dm.ID,
		Email:     dm.Email,
		Name:      dm.Name,
		Role:      dm.Role,
		IsActive:  dm.IsActive,
		DeletedAt: dm.DeletedAt,
	}, nil
}

// GetEffectivePermissions returns the codes with an open grant.
func (r *Repository) GetEffectivePermissions(userID string) ([]string, error) {
	query := `SELECT DISTINCT p.code
	          FROM permissions p
	          JOIN permission_grants g ON p.id = g.permission_id
	          WHERE g.user_id = ? AND g.revoked_at IS NULL`

	rows, err := r.db.Raw(query, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}

	return codes, rows.Err()
}
