package permission

import (
	"context"
	"fmt"
	"strings"
)

// DeniedError carries the required permissions and the caller's groups
// when an authorization check fails, so the caller can render a precise
// denial without a second lookup.
type DeniedError struct {
	Required []string
	Groups   []string
}

// Error describes the error operation and its observable behavior.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied: requires %s", strings.Join(e.Required, ", "))
}

// Unwrap describes the unwrap operation and its observable behavior.
func (e *DeniedError) Unwrap() error {
	return ErrDenied
}

// Resolver defines a public type used by goAuthKit APIs.
//
// Resolver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Resolver answers group and permission questions for users, with a
// single short-circuit: membership in the configured super-admin group
// grants every permission without consulting permission rows.
type Resolver struct {
	store      Store
	superAdmin string
}

// NewResolver describes the newresolver operation and its observable behavior.
//
// NewResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewResolver(store Store, superAdminGroup string) *Resolver {
	return &Resolver{store: store, superAdmin: superAdminGroup}
}

// UserGroups describes the usergroups operation and its observable behavior.
//
// UserGroups may return an error when input validation, dependency calls, or security checks fail.
// UserGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) UserGroups(ctx context.Context, userID string) ([]string, error) {
	return r.store.UserGroups(ctx, userID)
}

// UserPermissions describes the userpermissions operation and its observable behavior.
//
// UserPermissions may return an error when input validation, dependency calls, or security checks fail.
// UserPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	return r.store.UserPermissions(ctx, userID)
}

// IsSuperAdmin reports whether the user belongs to the super-admin group.
func (r *Resolver) IsSuperAdmin(ctx context.Context, userID string) (bool, []string, error) {
	groups, err := r.store.UserGroups(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	for _, g := range groups {
		if g == r.superAdmin {
			return true, groups, nil
		}
	}
	return false, groups, nil
}

// AssignGroups describes the assigngroups operation and its observable behavior.
//
// AssignGroups may return an error when input validation, dependency calls, or security checks fail.
// AssignGroups does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) AssignGroups(ctx context.Context, userID string, codenames []string, assignedBy string) error {
	return r.store.ReplaceUserGroups(ctx, userID, codenames, assignedBy)
}

// Authorize checks that the user holds the required permission codenames.
// The super-admin bypass is evaluated first. With requireAll false, any
// one of the required permissions suffices; with true, every one must be
// held. A denial is a *[DeniedError] wrapping [ErrDenied].
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Resolver) Authorize(ctx context.Context, userID string, required []string, requireAll bool) error {
	if len(required) == 0 {
		return nil
	}

	bypass, groups, err := r.IsSuperAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if bypass {
		return nil
	}

	return r.authorizeAgainst(ctx, userID, groups, required, requireAll)
}

func (r *Resolver) authorizeAgainst(ctx context.Context, userID string, groups, required []string, requireAll bool) error {
	matched := 0
	for _, codename := range required {
		ok, err := r.store.UserHasPermission(ctx, userID, codename)
		if err != nil {
			return err
		}
		if ok {
			if !requireAll {
				return nil
			}
			matched++
		} else if requireAll {
			return &DeniedError{Required: required, Groups: groups}
		}
	}

	if requireAll && matched == len(required) {
		return nil
	}
	return &DeniedError{Required: required, Groups: groups}
}

// AuthorizeSnapshot checks a required set against an already-resolved
// permission list, such as the snapshot embedded in a session token.
// No store round-trip happens; the snapshot is trusted as-of mint time.
func AuthorizeSnapshot(held, required []string, requireAll bool) bool {
	if len(required) == 0 {
		return true
	}

	set := make(map[string]struct{}, len(held))
	for _, p := range held {
		set[p] = struct{}{}
	}

	for _, codename := range required {
		_, ok := set[codename]
		if ok && !requireAll {
			return true
		}
		if !ok && requireAll {
			return false
		}
	}
	return requireAll
}
