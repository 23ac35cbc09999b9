package repository

import (
	"database/sql"
)

// SQLExecutor is the query surface shared by sql.DB and sql.Tx. Every
// repository is built over it, so the same SQL runs against the pooled
// connection or inside a transaction without knowing which.
type SQLExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// DB additionally opens transactions. Only the pooled *sql.DB satisfies it;
// a Store already inside a transaction cannot begin another.
type DB interface {
	SQLExecutor
	Begin() (*sql.Tx, error)
}

var _ DB = (*sql.DB)(nil)

// txExecutor adapts *sql.Tx to SQLExecutor for the Store that
// WithTransaction hands to its callback.
type txExecutor struct {
	tx *sql.Tx
}

func (t *txExecutor) Exec(query string, args ...interface{}) (sql.Result, error) {
	return t.tx.Exec(query, args...)
}

func (t *txExecutor) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.Query(query, args...)
}

func (t *txExecutor) QueryRow(query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRow(query, args...)
}
