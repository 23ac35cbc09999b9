package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

func TestRecordForAcceptedBid_SecondCallReturnsExisting(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.seedUser(t, domain.RoleFarmer)
	buyer := env.seedUser(t, domain.RoleBuyer)
	listing := env.seedListing(t, farmer, "10.00", "5")
	bid := env.seedBid(t, listing, buyer, "12.00", "5")

	first, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)

	// A retried record is a no-op: same transaction comes back, no second row.
	second, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ExternalRef, second.ExternalRef)

	txns, err := env.txns.ListTransactionsForParty(buyer.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestCompletePayment_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.seedUser(t, domain.RoleFarmer)
	buyer := env.seedUser(t, domain.RoleBuyer)
	listing := env.seedListing(t, farmer, "10.00", "5")
	bid := env.seedBid(t, listing, buyer, "12.00", "5")

	txn, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, txn.PaymentStatus)

	require.NoError(t, env.txns.CompletePayment(txn.ID, "upi"))

	completed, err := env.txns.GetTransaction(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, completed.PaymentStatus)
	assert.Equal(t, "upi", completed.PaymentMethod)

	// Completed is terminal: neither completing again nor failing is legal.
	err = env.txns.CompletePayment(txn.ID, "card")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.InvalidState, appErr.Code)

	err = env.txns.FailPayment(txn.ID, "gateway timeout")
	require.Error(t, err)
	appErr, ok = err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.InvalidState, appErr.Code)
}

func TestFailPayment_RecordsReason(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.seedUser(t, domain.RoleFarmer)
	buyer := env.seedUser(t, domain.RoleBuyer)
	listing := env.seedListing(t, farmer, "10.00", "5")
	bid := env.seedBid(t, listing, buyer, "12.00", "5")

	txn, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)

	require.NoError(t, env.txns.FailPayment(txn.ID, "insufficient funds"))

	failed, err := env.txns.GetTransaction(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, failed.PaymentStatus)
	assert.Equal(t, "insufficient funds", failed.FailureReason)
}

func TestCompletePayment_RequiresMethod(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.seedUser(t, domain.RoleFarmer)
	buyer := env.seedUser(t, domain.RoleBuyer)
	listing := env.seedListing(t, farmer, "10.00", "5")
	bid := env.seedBid(t, listing, buyer, "12.00", "5")

	txn, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)

	err = env.txns.CompletePayment(txn.ID, "")
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.InvalidInput, appErr.Code)
}

func TestListTransactionsForParty_BothSidesSeeIt(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.seedUser(t, domain.RoleFarmer)
	buyer := env.seedUser(t, domain.RoleBuyer)
	listing := env.seedListing(t, farmer, "10.00", "20")
	bid := env.seedBid(t, listing, buyer, "12.00", "5")

	txn, err := env.txns.RecordForAcceptedBid(env.store, bid, farmer.ID)
	require.NoError(t, err)

	for _, party := range []*domain.User{farmer, buyer} {
		txns, err := env.txns.ListTransactionsForParty(party.ID)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Equal(t, txn.ID, txns[0].ID)
	}
}
