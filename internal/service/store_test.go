package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// memStore is an in-memory domain.Store used by the service tests. It mirrors
// the storage layer's semantics: status-guarded updates, a unique constraint
// on transactions.bid_id, and transactional rollback via state snapshots.
type memStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]domain.User
	listings     map[uuid.UUID]domain.Listing
	bids         map[uuid.UUID]domain.Bid
	transactions map[uuid.UUID]domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]domain.User),
		listings:     make(map[uuid.UUID]domain.Listing),
		bids:         make(map[uuid.UUID]domain.Bid),
		transactions: make(map[uuid.UUID]domain.Transaction),
	}
}

func (s *memStore) Users() domain.UserRepository               { return (*memUsers)(s) }
func (s *memStore) Listings() domain.ListingRepository         { return (*memListings)(s) }
func (s *memStore) Bids() domain.BidRepository                 { return (*memBids)(s) }
func (s *memStore) Transactions() domain.TransactionRepository { return (*memTransactions)(s) }

// WithTransaction snapshots all state and restores it when fn fails, giving
// the same all-or-nothing behavior as the SQL store.
func (s *memStore) WithTransaction(fn func(domain.Store) error) error {
	s.mu.Lock()
	snapshot := struct {
		users        map[uuid.UUID]domain.User
		listings     map[uuid.UUID]domain.Listing
		bids         map[uuid.UUID]domain.Bid
		transactions map[uuid.UUID]domain.Transaction
	}{
		users:        copyMap(s.users),
		listings:     copyMap(s.listings),
		bids:         copyMap(s.bids),
		transactions: copyMap(s.transactions),
	}
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users = snapshot.users
		s.listings = snapshot.listings
		s.bids = snapshot.bids
		s.transactions = snapshot.transactions
		s.mu.Unlock()
		return err
	}
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memUsers memStore

func (s *memUsers) CreateUser(user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return errors.ErrDuplicateUser
		}
	}
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = *user
	return nil
}

func (s *memUsers) GetUser(id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &u, nil
}

type memListings memStore

func (s *memListings) CreateListing(listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[listing.OwnerID]; !ok {
		return errors.ErrUserNotFound
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	s.listings[listing.ID] = *listing
	return nil
}

func (s *memListings) GetListing(id uuid.UUID) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, errors.ErrListingNotFound
	}
	return &l, nil
}

func (s *memListings) GetListingForUpdate(id uuid.UUID) (*domain.Listing, error) {
	return s.GetListing(id)
}

func (s *memListings) ListActiveListings(filter domain.ListingFilter) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Listing
	for _, l := range s.listings {
		if l.Status != domain.ListingActive {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(filter.Location)) {
			continue
		}
		if filter.QualityGrade != "" && l.QualityGrade != filter.QualityGrade {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		switch filter.SortKey {
		case domain.SortPriceAsc:
			return out[i].UnitPrice.LessThan(out[j].UnitPrice)
		case domain.SortPriceDesc:
			return out[i].UnitPrice.GreaterThan(out[j].UnitPrice)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out, nil
}

func (s *memListings) UpdateListingQuantity(id uuid.UUID, qty decimal.Decimal, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return errors.ErrListingNotFound
	}
	if qty.IsNegative() {
		return errors.ErrInsufficientStock
	}
	l.AvailableQty = qty
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return nil
}

func (s *memListings) UpdateListingStatus(id uuid.UUID, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.listings[id]
	if !ok {
		return errors.ErrListingNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return nil
}

type memBids memStore

func (s *memBids) CreateBid(bid *domain.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[bid.ListingID]; !ok {
		return errors.ErrListingNotFound
	}
	now := time.Now().UTC()
	bid.CreatedAt = now
	bid.UpdatedAt = now
	s.bids[bid.ID] = *bid
	return nil
}

func (s *memBids) GetBid(id uuid.UUID) (*domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return nil, errors.ErrBidNotFound
	}
	return &b, nil
}

func (s *memBids) ListBidsForListing(listingID uuid.UUID) ([]domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bid
	for _, b := range s.bids {
		if b.ListingID == listingID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnitAmount.Equal(out[j].UnitAmount) {
			return out[i].UnitAmount.GreaterThan(out[j].UnitAmount)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memBids) ListBidsForBidder(bidderID uuid.UUID) ([]domain.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Bid
	for _, b := range s.bids {
		if b.BidderID == bidderID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memBids) UpdateBidStatus(id uuid.UUID, from, to domain.BidStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok || b.Status != from {
		return errors.NewAppErrorf(errors.InvalidState, "bid is not %s", from)
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	s.bids[id] = b
	return nil
}

type memTransactions memStore

func (s *memTransactions) CreateTransaction(txn *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.BidID == txn.BidID || t.ExternalRef == txn.ExternalRef {
			return errors.ErrDuplicateTransaction
		}
	}
	now := time.Now().UTC()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	s.transactions[txn.ID] = *txn
	return nil
}

func (s *memTransactions) GetTransaction(id uuid.UUID) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	return &t, nil
}

func (s *memTransactions) GetTransactionByBidID(bidID uuid.UUID) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.BidID == bidID {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (s *memTransactions) ListTransactionsForParty(userID uuid.UUID) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.transactions {
		if t.PayerID == userID || t.PayeeID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memTransactions) UpdatePaymentStatus(id uuid.UUID, from, to domain.PaymentStatus, method, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok || t.PaymentStatus != from {
		return errors.NewAppErrorf(errors.InvalidState, "payment is not %s", from)
	}
	t.PaymentStatus = to
	t.PaymentMethod = method
	t.FailureReason = reason
	t.UpdatedAt = time.Now().UTC()
	s.transactions[id] = t
	return nil
}
