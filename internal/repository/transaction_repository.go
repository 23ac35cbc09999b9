package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = `id, external_ref, bid_id, payer_id, payee_id, amount,
		payment_method, payment_status, failure_reason, created_at, updated_at`

func (r *transactionRepository) CreateTransaction(txn *domain.Transaction) error {
	query := `
		INSERT INTO transactions
		(id, external_ref, bid_id, payer_id, payee_id, amount, payment_method, payment_status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		txn.ID,
		txn.ExternalRef,
		txn.BidID,
		txn.PayerID,
		txn.PayeeID,
		txn.Amount.String(),
		nullIfEmpty(txn.PaymentMethod),
		txn.PaymentStatus,
		nullIfEmpty(txn.FailureReason),
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				// bid_id uniqueness is the exactly-once guard; external_ref
				// uniqueness catches a reference collision. Either way the
				// insert must not be retried blindly.
				r.logger.Warn("Duplicate transaction insert",
					"bid_id", txn.BidID, "constraint", pqErr.Constraint)
				return errors.ErrDuplicateTransaction
			}
		}
		r.logger.Error("Failed to create transaction", "bid_id", txn.BidID, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to create transaction").WithDetails(err.Error())
	}

	txn.CreatedAt = now
	txn.UpdatedAt = now
	r.logger.Info("Transaction created",
		"transaction_id", txn.ID, "external_ref", txn.ExternalRef, "bid_id", txn.BidID)
	return nil
}

func (r *transactionRepository) GetTransaction(id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := r.scanTransaction(query, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, errors.ErrTransactionNotFound
	}
	return txn, nil
}

func (r *transactionRepository) GetTransactionByBidID(bidID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE bid_id = $1`
	return r.scanTransaction(query, bidID)
}

func (r *transactionRepository) scanTransaction(query string, arg interface{}) (*domain.Transaction, error) {
	var txn domain.Transaction
	var amountStr string
	var method, reason sql.NullString

	err := r.db.QueryRow(query, arg).Scan(
		&txn.ID,
		&txn.ExternalRef,
		&txn.BidID,
		&txn.PayerID,
		&txn.PayeeID,
		&amountStr,
		&method,
		&txn.PaymentStatus,
		&reason,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction", "arg", arg, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get transaction").WithDetails(err.Error())
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to parse amount").WithDetails(err.Error())
	}
	txn.Amount = amount
	txn.PaymentMethod = method.String
	txn.FailureReason = reason.String

	return &txn, nil
}

func (r *transactionRepository) ListTransactionsForParty(userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE payer_id = $1 OR payee_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("Failed to list transactions", "user_id", userID, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var amountStr string
		var method, reason sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.ExternalRef,
			&txn.BidID,
			&txn.PayerID,
			&txn.PayeeID,
			&amountStr,
			&method,
			&txn.PaymentStatus,
			&reason,
			&txn.CreatedAt,
			&txn.UpdatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to scan transaction").WithDetails(err.Error())
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to parse amount").WithDetails(err.Error())
		}
		txn.Amount = amount
		txn.PaymentMethod = method.String
		txn.FailureReason = reason.String
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to iterate transactions").WithDetails(err.Error())
	}

	return txns, nil
}

// UpdatePaymentStatus moves a pending transaction to completed or failed. The
// status guard in the WHERE clause keeps the transition one-way.
func (r *transactionRepository) UpdatePaymentStatus(id uuid.UUID, from, to domain.PaymentStatus, method, reason string) error {
	query := `
		UPDATE transactions
		SET payment_status = $1, payment_method = $2, failure_reason = $3, updated_at = $4
		WHERE id = $5 AND payment_status = $6
	`

	result, err := r.db.Exec(query, to, nullIfEmpty(method), nullIfEmpty(reason), time.Now().UTC(), id, from)
	if err != nil {
		r.logger.Error("Failed to update payment status", "transaction_id", id, "status", to, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update payment status").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		r.logger.Warn("Transaction not in expected state", "transaction_id", id, "from", from, "to", to)
		return errors.NewAppErrorf(errors.InvalidState, "payment is not %s", from)
	}

	r.logger.Info("Payment status updated", "transaction_id", id, "status", to)
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
