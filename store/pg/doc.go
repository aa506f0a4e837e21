// Package pg provides a PostgreSQL-backed implementation of
// goAuthKit.UserProvider and permission.Store using the pgx stdlib
// driver over database/sql.
//
// # Schema
//
// Tables: auth_users, auth_groups, auth_permissions,
// auth_group_permissions, auth_user_groups. Group membership reads
// consider active groups only; group replacement is transactional.
package pg
