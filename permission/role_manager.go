package permission

import (
	"errors"
	"sync"
)

// RoleManager composes role masks from registered permission bits. A role
// with zero permissions is valid; its mask grants nothing.
type RoleManager struct {
	registry *Registry

	mu     sync.RWMutex
	roles  map[string]Mask64
	frozen bool
}

// NewRoleManager creates a role manager bound to registry.
func NewRoleManager(registry *Registry) *RoleManager {
	return &RoleManager{
		registry: registry,
		roles:    make(map[string]Mask64),
	}
}

// RegisterRole records roleName granting exactly permissionNames. Every
// referenced permission must already exist in the registry. Must be called
// before [RoleManager.Freeze].
func (rm *RoleManager) RegisterRole(roleName string, permissionNames []string) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.frozen {
		return errors.New("role manager frozen")
	}

	if roleName == "" {
		return errors.New("role name empty")
	}

	if _, exists := rm.roles[roleName]; exists {
		return errors.New("role already registered: " + roleName)
	}

	var mask Mask64
	for _, perm := range permissionNames {
		bit, ok := rm.registry.Bit(perm)
		if !ok {
			return errors.New("permission not registered: " + perm)
		}
		mask = mask.Set(bit)
	}

	rm.roles[roleName] = mask
	return nil
}

// GetMask returns the mask for roleName, or false if the role is unknown.
func (rm *RoleManager) GetMask(roleName string) (Mask64, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	mask, ok := rm.roles[roleName]
	return mask, ok
}

// HasRole reports whether roleName exists in the reference data.
func (rm *RoleManager) HasRole(roleName string) bool {
	_, ok := rm.GetMask(roleName)
	return ok
}

// UnionOf returns the combined grants of the named roles, skipping names not
// present in the reference data (a held-but-unknown role cannot grant).
func (rm *RoleManager) UnionOf(roleNames []string) Mask64 {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	var union Mask64
	for _, name := range roleNames {
		union = union.Union(rm.roles[name])
	}
	return union
}

// Count returns the number of registered roles.
func (rm *RoleManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.roles)
}

// Freeze makes the role manager immutable. Further RegisterRole calls fail.
func (rm *RoleManager) Freeze() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.frozen = true
}
