package neurochat

import (
	"context"
	"errors"
)

// Authorize checks whether the user identified by userID holds the named
// permission through any of their assigned roles. The decision is computed
// from the live role assignments in durable storage and the frozen
// role-permission matrix, never from cached identity metadata.
//
// A denied check returns [ErrInsufficientPermissions]; an unregistered
// permission name denies rather than erroring, since an unknown capability
// can by definition not have been granted.
func (e *Engine) Authorize(ctx context.Context, userID, permissionName string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	bit, ok := e.registry.Bit(permissionName)
	if !ok {
		e.metricInc(MetricAuthorizeDenied)
		e.emitAudit(ctx, auditEventAuthorizeDenied, false, userID, ErrInsufficientPermissions,
			map[string]string{"permission": permissionName})
		return ErrInsufficientPermissions
	}

	roles, err := e.roles.RolesByUser(ctx, userID)
	if err != nil {
		return err
	}

	mask := e.roleManager.UnionOf(roles)
	if !mask.Has(bit) {
		e.metricInc(MetricAuthorizeDenied)
		e.emitAudit(ctx, auditEventAuthorizeDenied, false, userID, ErrInsufficientPermissions,
			map[string]string{"permission": permissionName})
		return ErrInsufficientPermissions
	}

	e.metricInc(MetricAuthorizeAllowed)
	return nil
}

// HasPermission is the boolean form of Authorize for call sites that branch
// rather than fail.
func (e *Engine) HasPermission(ctx context.Context, userID, permissionName string) (bool, error) {
	err := e.Authorize(ctx, userID, permissionName)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrInsufficientPermissions):
		return false, nil
	default:
		return false, err
	}
}

// AssignRole grants roleName to the user. The role must exist in the frozen
// role set ([ErrUnknownRole] otherwise). Assignment is idempotent: granting
// a role the user already holds succeeds without effect.
func (e *Engine) AssignRole(ctx context.Context, userID, roleName string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if !e.roleManager.HasRole(roleName) {
		return ErrUnknownRole
	}

	if _, err := e.users.UserByID(ctx, userID); err != nil {
		return err
	}

	if err := e.roles.AssignRole(ctx, userID, roleName); err != nil {
		return err
	}

	e.metricInc(MetricRoleAssigned)
	e.emitAudit(ctx, auditEventRoleAssigned, true, userID, nil,
		map[string]string{"role": roleName})
	return nil
}

// RolesOf returns the user's currently assigned role names.
func (e *Engine) RolesOf(ctx context.Context, userID string) ([]string, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	return e.roles.RolesByUser(ctx, userID)
}
