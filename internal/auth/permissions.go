// Package auth - Permission checking
package auth

import (
	"github.com/aethra/catalog-admin/internal/errors"
	"github.com/aethra/catalog-admin/internal/models"
)

// Action represents a permission action
type Action string

const (
	ActionView   Action = "view"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionAudit  Action = "audit"
)

// RolePermission is the fixed grant of one role
type RolePermission struct {
	CanView   bool
	CanEdit   bool
	CanDelete bool
	CanAudit  bool
}

var grants = map[models.Role]RolePermission{
	models.RoleAdmin:  {CanView: true, CanEdit: true, CanDelete: true, CanAudit: true},
	models.RoleEditor: {CanView: true, CanEdit: true},
	models.RoleViewer: {CanView: true},
}

// PermissionsFor returns the grant of a role; unknown roles get nothing
func PermissionsFor(role models.Role) RolePermission {
	return grants[role]
}

// Can checks if a role may perform an action
func Can(role models.Role, action Action) bool {
	perm := PermissionsFor(role)

	switch action {
	case ActionView:
		return perm.CanView
	case ActionEdit:
		return perm.CanEdit
	case ActionDelete:
		return perm.CanDelete
	case ActionAudit:
		return perm.CanAudit
	default:
		return false
	}
}

// Require returns a PermissionDeniedError when role may not perform action on resource
func Require(role models.Role, action Action, resource string) error {
	if !Can(role, action) {
		return errors.NewPermissionDeniedError(string(action), resource)
	}
	return nil
}
