package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Transaction struct {
	ID            uuid.UUID       `json:"transaction_id"`
	ExternalRef   string          `json:"external_ref"`
	BidID         uuid.UUID       `json:"bid_id"`
	PayerID       uuid.UUID       `json:"payer_id"`
	PayeeID       uuid.UUID       `json:"payee_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type TransactionRepository interface {
	CreateTransaction(txn *Transaction) error
	GetTransaction(id uuid.UUID) (*Transaction, error)
	// GetTransactionByBidID returns nil, nil when no transaction exists for
	// the bid. At most one can ever exist; the store enforces it.
	GetTransactionByBidID(bidID uuid.UUID) (*Transaction, error)
	ListTransactionsForParty(userID uuid.UUID) ([]Transaction, error)
	// UpdatePaymentStatus moves a pending transaction to completed or failed.
	// It must affect no row when the transaction is no longer pending.
	UpdatePaymentStatus(id uuid.UUID, from, to PaymentStatus, method, reason string) error
}
