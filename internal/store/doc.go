// Package store defines the persistence interfaces the services depend on,
// the sentinel errors all implementations map their backend errors to, and
// the transaction helper used to run multi-statement operations atomically.
// Concrete implementations live in internal/platform/postgres.
package store
