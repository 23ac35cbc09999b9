package service

import (
	"log/slog"

	"github.com/google/uuid"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// MarketplaceService sequences bid acceptance across the listing, bid and
// transaction stores inside one database transaction, so a failure at any
// step leaves no partial state behind.
type MarketplaceService struct {
	store  domain.Store
	txns   *TransactionService
	logger *slog.Logger
}

func NewMarketplaceService(store domain.Store, txns *TransactionService, logger *slog.Logger) *MarketplaceService {
	return &MarketplaceService{
		store:  store,
		txns:   txns,
		logger: logger,
	}
}

// AcceptBidAndReserve accepts a pending bid, reserves the requested quantity
// from the listing and records the payment transaction, atomically.
//
// The FOR UPDATE lock on the listing row serializes concurrent acceptances
// against the same listing: the second caller blocks until the first commits
// and then sees the decremented quantity. When stock is insufficient the
// whole operation aborts and the bid stays pending; whether to reject it is
// left to the listing owner.
func (s *MarketplaceService) AcceptBidAndReserve(bidID, actingOwnerID uuid.UUID) (*domain.Transaction, error) {
	var txn *domain.Transaction

	err := s.store.WithTransaction(func(tx domain.Store) error {
		bid, err := tx.Bids().GetBid(bidID)
		if err != nil {
			return err
		}

		listing, err := tx.Listings().GetListingForUpdate(bid.ListingID)
		if err != nil {
			return err
		}
		// Ownership before anything else, so a non-owner learns nothing
		// about the bid's state. RejectBid checks in the same order.
		if listing.OwnerID != actingOwnerID {
			return errors.ErrNotListingOwner
		}
		if bid.IsTerminal() {
			return errors.NewAppErrorf(errors.InvalidState, "bid is already %s", bid.Status)
		}
		if listing.Status != domain.ListingActive {
			return errors.ErrListingUnavailable
		}

		// Re-check under the row lock. Earlier acceptances may have consumed
		// stock since this bid was placed.
		if listing.AvailableQty.LessThan(bid.QtyRequested) {
			s.logger.Info("Acceptance aborted, insufficient stock",
				"bid_id", bidID,
				"listing_id", listing.ID,
				"available", listing.AvailableQty,
				"requested", bid.QtyRequested)
			return errors.ErrInsufficientStock
		}

		newQty := listing.AvailableQty.Sub(bid.QtyRequested)
		status := domain.ListingActive
		if newQty.IsZero() {
			status = domain.ListingSold
		}
		if err := tx.Listings().UpdateListingQuantity(listing.ID, newQty, status); err != nil {
			return err
		}

		if err := tx.Bids().UpdateBidStatus(bidID, domain.BidPending, domain.BidAccepted); err != nil {
			return err
		}

		txn, err = s.txns.RecordForAcceptedBid(tx, bid, listing.OwnerID)
		return err
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Bid accepted",
		"bid_id", bidID,
		"transaction_id", txn.ID,
		"external_ref", txn.ExternalRef,
		"amount", txn.Amount)
	return txn, nil
}
