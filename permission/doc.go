// Package permission resolves group memberships and permission grants for
// goAuthKit authorization checks.
//
// # Model
//
// Users belong to groups; groups grant permissions identified by codename.
// The [Resolver] answers "which groups", "which permissions" and "may the
// user do X" through a [Store], with one short-circuit: membership in the
// configured super-admin group grants everything without consulting
// permission rows.
//
// # Architecture boundaries
//
// This package defines the read/assign surface only. Persistence lives
// behind the [Store] interface (see store/pg for the SQL implementation).
//
// # What this package must NOT do
//
//   - Open database connections or import a driver.
//   - Import goAuthKit, jwt, or cache.
//   - Cache resolutions — staleness policy belongs to the caller.
package permission
