package domain

// Store bundles the four repositories behind one unit-of-work boundary.
// WithTransaction hands fn a Store whose repositories share a single atomic
// scope; returning an error rolls back everything done through it.
type Store interface {
	Users() UserRepository
	Listings() ListingRepository
	Bids() BidRepository
	Transactions() TransactionRepository
	WithTransaction(fn func(Store) error) error
}
