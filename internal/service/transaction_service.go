package service

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// TransactionService records payment transactions derived from accepted bids
// and drives their payment lifecycle.
type TransactionService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewTransactionService(store domain.Store, logger *slog.Logger) *TransactionService {
	return &TransactionService{
		store:  store,
		logger: logger,
	}
}

// RecordForAcceptedBid creates the single transaction for an accepted bid.
// The store argument lets the facade run it inside the same database
// transaction as the inventory reservation; callers outside a transaction
// pass the service's own store.
//
// A retry that finds a matching transaction already recorded is a no-op: the
// existing row is returned and a warning logged. A mismatching duplicate is
// an upstream bug and surfaces as DuplicateTransaction.
func (s *TransactionService) RecordForAcceptedBid(store domain.Store, bid *domain.Bid, payeeID uuid.UUID) (*domain.Transaction, error) {
	amount := bid.Total()

	existing, err := store.Transactions().GetTransactionByBidID(bid.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Amount.Equal(amount) && existing.PayerID == bid.BidderID {
			s.logger.Warn("Transaction already recorded for bid, returning existing",
				"bid_id", bid.ID, "transaction_id", existing.ID)
			return existing, nil
		}
		return nil, errors.ErrDuplicateTransaction
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		ExternalRef:   newExternalRef(),
		BidID:         bid.ID,
		PayerID:       bid.BidderID,
		PayeeID:       payeeID,
		Amount:        amount,
		PaymentStatus: domain.PaymentPending,
	}

	if err := store.Transactions().CreateTransaction(txn); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction recorded",
		"transaction_id", txn.ID,
		"external_ref", txn.ExternalRef,
		"bid_id", bid.ID,
		"amount", amount)
	return txn, nil
}

func (s *TransactionService) GetTransaction(id uuid.UUID) (*domain.Transaction, error) {
	return s.store.Transactions().GetTransaction(id)
}

// CompletePayment moves a pending transaction to completed, recording the
// payment method. No gateway is involved; settlement is simulated.
func (s *TransactionService) CompletePayment(id uuid.UUID, method string) error {
	if method == "" {
		return errors.NewAppError(errors.InvalidInput, "payment method is required")
	}
	if _, err := s.store.Transactions().GetTransaction(id); err != nil {
		return err
	}
	return s.store.Transactions().UpdatePaymentStatus(id, domain.PaymentPending, domain.PaymentCompleted, method, "")
}

// FailPayment moves a pending transaction to failed, recording the reason.
func (s *TransactionService) FailPayment(id uuid.UUID, reason string) error {
	if _, err := s.store.Transactions().GetTransaction(id); err != nil {
		return err
	}
	return s.store.Transactions().UpdatePaymentStatus(id, domain.PaymentPending, domain.PaymentFailed, "", reason)
}

func (s *TransactionService) ListTransactionsForParty(userID uuid.UUID) ([]domain.Transaction, error) {
	return s.store.Transactions().ListTransactionsForParty(userID)
}

// newExternalRef generates the human-facing payment reference. Eight hex
// characters of a fresh UUID; the UNIQUE constraint on external_ref backstops
// the slim collision chance.
func newExternalRef() string {
	id := uuid.New()
	return fmt.Sprintf("TXN_%X", id[:4])
}
