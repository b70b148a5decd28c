// Package postgres implements the store interfaces on top of PostgreSQL,
// accessed through database/sql with the pgx stdlib driver. Queries are
// built with squirrel, and backend errors are mapped onto the store
// package's sentinel errors so callers never depend on driver details.
package postgres
