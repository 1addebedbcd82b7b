package store

import "database/sql"

// Querier is satisfied by both *sql.DB and *sql.Tx so a store can run inside
// a caller's transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type scanner interface{ Scan(...any) error }
