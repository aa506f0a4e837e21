package permission

import (
	"context"
	"errors"
)

// ErrGroupNotFound is an exported constant or variable used by the authentication engine.
var ErrGroupNotFound = errors.New("group not found")

// ErrDenied is an exported constant or variable used by the authentication engine.
var ErrDenied = errors.New("permission denied")

// Store is the persistence surface the [Resolver] reads group and
// permission rows through. Implementations are expected to return
// active group memberships only; membership in a deactivated group
// grants nothing.
type Store interface {
	// UserGroups returns the codenames of the user's active groups.
	UserGroups(ctx context.Context, userID string) ([]string, error)

	// UserPermissions returns the distinct union of permission codenames
	// granted through the user's active groups.
	UserPermissions(ctx context.Context, userID string) ([]string, error)

	// UserHasPermission reports whether any of the user's active groups
	// grants the permission codename.
	UserHasPermission(ctx context.Context, userID, codename string) (bool, error)

	// GroupByCodename looks up a group. Returns [ErrGroupNotFound] when
	// no group carries the codename.
	GroupByCodename(ctx context.Context, codename string) (*Group, error)

	// ReplaceUserGroups atomically replaces the user's group memberships
	// with the named groups. Either every named group resolves and the
	// full set is assigned, or nothing changes; an unknown codename
	// fails the whole call with [ErrGroupNotFound].
	ReplaceUserGroups(ctx context.Context, userID string, codenames []string, assignedBy string) error
}
