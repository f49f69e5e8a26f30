package permission

import (
	"log/slog"
	"time"

	"github.com/dmarquez/inventory-management/internal"
	"github.com/google/uuid"
)

// Repository is the ledger's storage surface. CreateGrant must fail
// with ErrDuplicateGrant when an open grant already exists for the
// pair; ApplyReconcile must apply all changes in one transaction.
type Repository interface {
	ListPermissions() ([]*Permission, error)
	GetPermissionsByIDs(ids []string) ([]*Permission, error)
	OpenGrants(userID string) ([]*Grant, error)
	CreateGrant(grant *Grant) error
	CloseGrant(userID, permissionID string, revokedAt time.Time, revokedBy string) (int64, error)
	ApplyReconcile(userID string, toGrant []*Grant, toRevokePermissionIDs []string, revokedAt time.Time, revokedBy string) error
	History(userID string) ([]*Grant, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Catalog returns the immutable permission reference data.
func (s *Service) Catalog() ([]*Permission, error) {
	return s.repo.ListPermissions()
}

// Grant opens a grant for (user, permission). Granting an already
// granted permission is a deterministic conflict, not a silent no-op,
// so callers can tell converged state from state they just changed.
func (s *Service) Grant(userID, permissionID, actor string) (*Grant, error) {
	perms, err := s.repo.GetPermissionsByIDs([]string{permissionID})
	if err != nil {
		return nil, err
	}
	if len(perms) == 0 {
		return nil, ErrPermissionNotFound
	}

	grant := newGrant(userID, permissionID, actor)
	if err := s.repo.CreateGrant(grant); err != nil {
		if err == ErrDuplicateGrant {
			s.logger.Warn("duplicate grant rejected",
				"user_id", userID, "permission_id", permissionID, "actor", actor)
		}
		return nil, err
	}

	s.logger.Info("permission granted",
		"user_id", userID, "permission_id", permissionID, "actor", actor)
	return grant, nil
}

// Revoke closes the open grant if there is one. Revoking a permission
// that is not granted is a no-op, not an error.
func (s *Service) Revoke(userID, permissionID, actor string) error {
	closed, err := s.repo.CloseGrant(userID, permissionID, time.Now(), actor)
	if err != nil {
		return err
	}

	if closed == 0 {
		s.logger.Debug("revoke was a no-op: no open grant",
			"user_id", userID, "permission_id", permissionID)
		return nil
	}

	s.logger.Info("permission revoked",
		"user_id", userID, "permission_id", permissionID, "actor", actor)
	return nil
}

// EffectivePermissions returns the caller's permission codes as of
// now. ADMIN implies the full catalog without consulting the ledger.
func (s *Service) EffectivePermissions(userID, role string) ([]string, error) {
	if role == internal.RoleAdmin {
		catalog, err := s.repo.ListPermissions()
		if err != nil {
			return nil, err
		}
		codes := make([]string, len(catalog))
		for i, p := range catalog {
			codes[i] = p.Code
		}
		return codes, nil
	}

	open, err := s.repo.OpenGrants(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(open))
	for _, g := range open {
		ids = append(ids, g.PermissionID)
	}
	perms, err := s.repo.GetPermissionsByIDs(ids)
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes, nil
}

// Reconcile converges the user's open grants to exactly the desired
// set: grants the missing ids, revokes the surplus, leaves the
// intersection untouched. All changes apply in one transaction.
func (s *Service) Reconcile(userID string, desiredPermissionIDs []string, actor string) error {
	desired := make(map[string]bool, len(desiredPermissionIDs))
	for _, id := range desiredPermissionIDs {
		desired[id] = true
	}

	if len(desiredPermissionIDs) > 0 {
		known, err := s.repo.GetPermissionsByIDs(desiredPermissionIDs)
		if err != nil {
			return err
		}
		if len(known) != len(desired) {
			return ErrPermissionNotFound
		}
	}

	open, err := s.repo.OpenGrants(userID)
	if err != nil {
		return err
	}

	current := make(map[string]bool, len(open))
	for _, g := range open {
		current[g.PermissionID] = true
	}

	var toGrant []*Grant
	for id := range desired {
		if !current[id] {
			toGrant = append(toGrant, newGrant(userID, id, actor))
		}
	}

	var toRevoke []string
	for id := range current {
		if !desired[id] {
			toRevoke = append(toRevoke, id)
		}
	}

	if len(toGrant) == 0 && len(toRevoke) == 0 {
		s.logger.Debug("reconcile converged: nothing to change", "user_id", userID)
		return nil
	}

	if err := s.repo.ApplyReconcile(userID, toGrant, toRevoke, time.Now(), actor); err != nil {
		return err
	}

	s.logger.Info("permissions reconciled",
		"user_id", userID,
		"granted", len(toGrant),
		"revoked", len(toRevoke),
		"actor", actor)
	return nil
}

// History returns the full grant/revoke audit trail for a user.
func (s *Service) History(userID string) ([]*Grant, error) {
	return s.repo.History(userID)
}

func newGrant(userID, permissionID, actor string) *Grant {
	var grantedBy *string
	if actor != "" {
		grantedBy = &actor
	}
	return &Grant{
		ID:           uuid.NewString(),
		UserID:       userID,
		PermissionID: permissionID,
		GrantedAt:    time.Now(),
		GrantedBy:    grantedBy,
	}
}
