package repository

import (
	"database/sql"
	"log/slog"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// Store provides a unified interface for all repository operations with
// transaction support. A Store built over a sql.Tx hands the same tx to every
// repository it creates, so multi-entity mutations share one atomic scope.
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

var _ domain.Store = (*Store)(nil)

// Users returns a UserRepository using the current executor
func (s *Store) Users() domain.UserRepository {
	return NewUserRepository(s.executor, s.logger)
}

// Listings returns a ListingRepository using the current executor
func (s *Store) Listings() domain.ListingRepository {
	return NewListingRepository(s.executor, s.logger)
}

// Bids returns a BidRepository using the current executor
func (s *Store) Bids() domain.BidRepository {
	return NewBidRepository(s.executor, s.logger)
}

// Transactions returns a TransactionRepository using the current executor
func (s *Store) Transactions() domain.TransactionRepository {
	return NewTransactionRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction. Any
// error (or panic) from fn rolls back every mutation made through the
// transactional Store it receives.
func (s *Store) WithTransaction(fn func(domain.Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to begin transaction").WithDetails(err.Error())
	}

	txStore := &Store{
		executor: &txExecutor{tx: tx},
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.NewAppError(errors.StorageError, "failed to commit transaction").WithDetails(err.Error())
	}
	return nil
}
