package repository

import (
	"database/sql"

	"github.com/alexanderramin/docket/internal/db"
)

// SQLiteStore implements Store on the local SQLite database.
type SQLiteStore struct {
	db  db.DBTX
	uow db.UnitOfWork
}

// NewSQLiteStore creates a store over database.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: database, uow: db.NewSQLiteUnitOfWork(database)}
}

// NewSQLiteStoreWithUoW creates a store whose multi-statement writes run
// through uow.
func NewSQLiteStoreWithUoW(database *sql.DB, uow db.UnitOfWork) *SQLiteStore {
	return &SQLiteStore{db: database, uow: uow}
}

var _ Store = (*SQLiteStore)(nil)
