package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"agrimarket/internal/domain"
	"agrimarket/internal/grading"
)

type testEnv struct {
	store       *memStore
	users       *UserService
	listings    *ListingService
	bids        *BidService
	txns        *TransactionService
	marketplace *MarketplaceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()
	txns := NewTransactionService(store, logger)
	return &testEnv{
		store:       store,
		users:       NewUserService(store, logger),
		listings:    NewListingService(store, &grading.FixedGrader{Report: grading.Report{Grade: "A"}}, logger),
		bids:        NewBidService(store, logger),
		txns:        txns,
		marketplace: NewMarketplaceService(store, txns, logger),
	}
}

func (e *testEnv) seedUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	user, err := e.users.CreateUser("user-"+uuid.NewString()[:8], role)
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedListing(t *testing.T, owner *domain.User, price, qty string) *domain.Listing {
	t.Helper()
	listing, err := e.listings.CreateListing(&CreateListingRequest{
		OwnerID:   owner.ID,
		Title:     "Tomatoes",
		Category:  "vegetables",
		Unit:      "kg",
		Location:  "Valley Farm",
		UnitPrice: dec(t, price),
		Quantity:  dec(t, qty),
	})
	require.NoError(t, err)
	return listing
}

func (e *testEnv) seedBid(t *testing.T, listing *domain.Listing, bidder *domain.User, amount, qty string) *domain.Bid {
	t.Helper()
	bid, err := e.bids.PlaceBid(&PlaceBidRequest{
		ListingID:  listing.ID,
		BidderID:   bidder.ID,
		UnitAmount: dec(t, amount),
		Quantity:   dec(t, qty),
	})
	require.NoError(t, err)
	return bid
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
