package permission

import "errors"

// ReconcileDTO is the full desired permission set for one user; the
// service converges open grants to exactly this set.
type ReconcileDTO struct {
	PermissionIDs []string `json:"permission_ids"`
}

func (dto ReconcileDTO) Validate() error {
	seen := make(map[string]bool, len(dto.PermissionIDs))
	for _, id := range dto.PermissionIDs {
		if id == "" {
			return errors.New("permission id cannot be empty")
		}
		if seen[id] {
			return errors.New("duplicate permission id in request")
		}
		seen[id] = true
	}
	return nil
}

// GrantDTO grants a single permission.
type GrantDTO struct {
	PermissionID string `json:"permission_id"`
}

func (dto GrantDTO) Validate() error {
	if dto.PermissionID == "" {
		return errors.New("permission_id is required")
	}
	return nil
}
