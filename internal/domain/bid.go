package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

type Bid struct {
	ID           uuid.UUID       `json:"bid_id"`
	ListingID    uuid.UUID       `json:"listing_id"`
	BidderID     uuid.UUID       `json:"bidder_id"`
	UnitAmount   decimal.Decimal `json:"unit_amount"`
	QtyRequested decimal.Decimal `json:"qty_requested"`
	Message      string          `json:"message,omitempty"`
	Status       BidStatus       `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Total is the bid's economic value: unit amount times quantity requested.
func (b *Bid) Total() decimal.Decimal {
	return b.UnitAmount.Mul(b.QtyRequested)
}

// IsTerminal reports whether the bid has left the pending state. Accepted
// and rejected bids never transition again.
func (b *Bid) IsTerminal() bool {
	return b.Status != BidPending
}

type BidRepository interface {
	CreateBid(bid *Bid) error
	GetBid(id uuid.UUID) (*Bid, error)
	// ListBidsForListing returns bids ordered by unit amount descending,
	// earlier bid first on equal amounts.
	ListBidsForListing(listingID uuid.UUID) ([]Bid, error)
	ListBidsForBidder(bidderID uuid.UUID) ([]Bid, error)
	// UpdateBidStatus transitions the bid out of pending. It must affect no
	// row when the bid is already terminal, so callers can detect lost races.
	UpdateBidStatus(id uuid.UUID, from, to BidStatus) error
}
