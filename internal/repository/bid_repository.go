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

type bidRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewBidRepository(db SQLExecutor, logger *slog.Logger) domain.BidRepository {
	return &bidRepository{
		db:     db,
		logger: logger,
	}
}

const bidColumns = `id, listing_id, bidder_id, unit_amount, qty_requested, message, status, created_at, updated_at`

func (r *bidRepository) CreateBid(bid *domain.Bid) error {
	query := `
		INSERT INTO bids
		(id, listing_id, bidder_id, unit_amount, qty_requested, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		bid.ID,
		bid.ListingID,
		bid.BidderID,
		bid.UnitAmount.String(),
		bid.QtyRequested.String(),
		bid.Message,
		bid.Status,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Bid references missing listing or bidder",
					"listing_id", bid.ListingID, "bidder_id", bid.BidderID)
				return errors.ErrListingNotFound
			}
		}
		r.logger.Error("Failed to create bid",
			"listing_id", bid.ListingID, "bidder_id", bid.BidderID, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to create bid").WithDetails(err.Error())
	}

	bid.CreatedAt = now
	bid.UpdatedAt = now
	r.logger.Info("Bid created", "bid_id", bid.ID, "listing_id", bid.ListingID)
	return nil
}

func (r *bidRepository) GetBid(id uuid.UUID) (*domain.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bids WHERE id = $1`

	var bid domain.Bid
	var amountStr, qtyStr string

	err := r.db.QueryRow(query, id).Scan(
		&bid.ID,
		&bid.ListingID,
		&bid.BidderID,
		&amountStr,
		&qtyStr,
		&bid.Message,
		&bid.Status,
		&bid.CreatedAt,
		&bid.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrBidNotFound
		}
		r.logger.Error("Failed to get bid", "bid_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get bid").WithDetails(err.Error())
	}

	if err := parseBidDecimals(&bid, amountStr, qtyStr); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to parse bid").WithDetails(err.Error())
	}

	return &bid, nil
}

// ListBidsForListing orders by unit amount descending; on equal amounts the
// earlier bid comes first.
func (r *bidRepository) ListBidsForListing(listingID uuid.UUID) ([]domain.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids WHERE listing_id = $1
		ORDER BY unit_amount DESC, created_at ASC
	`
	return r.listBids(query, listingID)
}

func (r *bidRepository) ListBidsForBidder(bidderID uuid.UUID) ([]domain.Bid, error) {
	query := `
		SELECT ` + bidColumns + `
		FROM bids WHERE bidder_id = $1
		ORDER BY created_at DESC
	`
	return r.listBids(query, bidderID)
}

func (r *bidRepository) listBids(query string, arg interface{}) ([]domain.Bid, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		r.logger.Error("Failed to list bids", "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list bids").WithDetails(err.Error())
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var bid domain.Bid
		var amountStr, qtyStr string
		if err := rows.Scan(
			&bid.ID,
			&bid.ListingID,
			&bid.BidderID,
			&amountStr,
			&qtyStr,
			&bid.Message,
			&bid.Status,
			&bid.CreatedAt,
			&bid.UpdatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to scan bid").WithDetails(err.Error())
		}
		if err := parseBidDecimals(&bid, amountStr, qtyStr); err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to parse bid").WithDetails(err.Error())
		}
		bids = append(bids, bid)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to iterate bids").WithDetails(err.Error())
	}

	return bids, nil
}

// UpdateBidStatus performs the pending -> accepted/rejected transition. The
// WHERE clause on the current status makes the transition race-safe: a bid
// already moved by a concurrent caller matches no row and the caller sees
// InvalidState instead of silently double-transitioning.
func (r *bidRepository) UpdateBidStatus(id uuid.UUID, from, to domain.BidStatus) error {
	query := `UPDATE bids SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	result, err := r.db.Exec(query, to, time.Now().UTC(), id, from)
	if err != nil {
		r.logger.Error("Failed to update bid status", "bid_id", id, "status", to, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update bid status").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		r.logger.Warn("Bid not in expected state for transition", "bid_id", id, "from", from, "to", to)
		return errors.NewAppErrorf(errors.InvalidState, "bid is not %s", from)
	}

	r.logger.Info("Bid status updated", "bid_id", id, "status", to)
	return nil
}

func parseBidDecimals(bid *domain.Bid, amountStr, qtyStr string) error {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return err
	}
	bid.UnitAmount = amount
	bid.QtyRequested = qty
	return nil
}
