package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// BidService owns bid records and their lifecycle. A bid is an offer, not a
// reservation: placing one never touches listing inventory.
type BidService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewBidService(store domain.Store, logger *slog.Logger) *BidService {
	return &BidService{
		store:  store,
		logger: logger,
	}
}

type PlaceBidRequest struct {
	ListingID  uuid.UUID
	BidderID   uuid.UUID
	UnitAmount decimal.Decimal
	Quantity   decimal.Decimal
	Message    string
}

func (s *BidService) PlaceBid(req *PlaceBidRequest) (*domain.Bid, error) {
	if !req.UnitAmount.IsPositive() {
		return nil, errors.NewAppError(errors.InvalidInput, "unit amount must be positive")
	}
	if !req.Quantity.IsPositive() {
		return nil, errors.NewAppError(errors.InvalidInput, "quantity must be positive")
	}

	bidder, err := s.store.Users().GetUser(req.BidderID)
	if err != nil {
		return nil, err
	}
	if bidder.Role != domain.RoleBuyer {
		return nil, errors.NewAppError(errors.Forbidden, "only buyers can place bids")
	}

	listing, err := s.store.Listings().GetListing(req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingActive {
		return nil, errors.ErrListingUnavailable
	}
	// Checked at bid time only. Stock is re-checked at acceptance; multiple
	// pending bids may together exceed availability.
	if req.Quantity.GreaterThan(listing.AvailableQty) {
		return nil, errors.ErrInsufficientStock
	}

	bid := &domain.Bid{
		ID:           uuid.New(),
		ListingID:    req.ListingID,
		BidderID:     req.BidderID,
		UnitAmount:   req.UnitAmount,
		QtyRequested: req.Quantity,
		Message:      req.Message,
		Status:       domain.BidPending,
	}

	if err := s.store.Bids().CreateBid(bid); err != nil {
		return nil, err
	}

	s.logger.Info("Bid placed",
		"bid_id", bid.ID,
		"listing_id", bid.ListingID,
		"unit_amount", bid.UnitAmount,
		"qty_requested", bid.QtyRequested)
	return bid, nil
}

func (s *BidService) GetBid(id uuid.UUID) (*domain.Bid, error) {
	return s.store.Bids().GetBid(id)
}

func (s *BidService) ListBidsForListing(listingID uuid.UUID) ([]domain.Bid, error) {
	if _, err := s.store.Listings().GetListing(listingID); err != nil {
		return nil, err
	}
	return s.store.Bids().ListBidsForListing(listingID)
}

func (s *BidService) ListBidsForBidder(bidderID uuid.UUID) ([]domain.Bid, error) {
	return s.store.Bids().ListBidsForBidder(bidderID)
}

// RejectBid moves a pending bid to its terminal rejected state. Only the
// owner of the bid's listing may reject it.
func (s *BidService) RejectBid(bidID, actingOwnerID uuid.UUID) error {
	return s.store.WithTransaction(func(tx domain.Store) error {
		bid, err := tx.Bids().GetBid(bidID)
		if err != nil {
			return err
		}

		listing, err := tx.Listings().GetListing(bid.ListingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != actingOwnerID {
			return errors.ErrNotListingOwner
		}

		if bid.IsTerminal() {
			return errors.NewAppErrorf(errors.InvalidState, "bid is already %s", bid.Status)
		}

		if err := tx.Bids().UpdateBidStatus(bidID, domain.BidPending, domain.BidRejected); err != nil {
			return err
		}

		s.logger.Info("Bid rejected", "bid_id", bidID, "listing_id", bid.ListingID)
		return nil
	})
}
