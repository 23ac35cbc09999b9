package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

type listingRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewListingRepository(db SQLExecutor, logger *slog.Logger) domain.ListingRepository {
	return &listingRepository{
		db:     db,
		logger: logger,
	}
}

const listingColumns = `id, owner_id, title, category, unit, location, quality_grade,
		unit_price, available_qty, status, created_at, updated_at`

func (r *listingRepository) CreateListing(listing *domain.Listing) error {
	query := `
		INSERT INTO listings
		(id, owner_id, title, category, unit, location, quality_grade, unit_price, available_qty, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(
		query,
		listing.ID,
		listing.OwnerID,
		listing.Title,
		listing.Category,
		listing.Unit,
		listing.Location,
		listing.QualityGrade,
		listing.UnitPrice.String(),
		listing.AvailableQty.String(),
		listing.Status,
		now,
		now,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" { // foreign_key_violation
				r.logger.Warn("Listing references missing owner", "owner_id", listing.OwnerID)
				return errors.ErrUserNotFound
			}
		}
		r.logger.Error("Failed to create listing", "owner_id", listing.OwnerID, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to create listing").WithDetails(err.Error())
	}

	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.logger.Info("Listing created", "listing_id", listing.ID, "owner_id", listing.OwnerID)
	return nil
}

func (r *listingRepository) GetListing(id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return r.scanListing(query, id)
}

func (r *listingRepository) GetListingForUpdate(id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	return r.scanListing(query, id)
}

func (r *listingRepository) scanListing(query string, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	var priceStr, qtyStr string

	err := r.db.QueryRow(query, id).Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&listing.Category,
		&listing.Unit,
		&listing.Location,
		&listing.QualityGrade,
		&priceStr,
		&qtyStr,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing", "listing_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get listing").WithDetails(err.Error())
	}

	if err := parseListingDecimals(&listing, priceStr, qtyStr); err != nil {
		r.logger.Error("Failed to parse listing decimals", "listing_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to parse listing").WithDetails(err.Error())
	}

	return &listing, nil
}

func (r *listingRepository) ListActiveListings(filter domain.ListingFilter) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE status = $1`
	args := []interface{}{domain.ListingActive}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		query += fmt.Sprintf(` AND location ILIKE '%%' || $%d || '%%'`, len(args))
	}
	if filter.QualityGrade != "" {
		args = append(args, filter.QualityGrade)
		query += fmt.Sprintf(` AND quality_grade = $%d`, len(args))
	}

	switch filter.SortKey {
	case domain.SortPriceAsc:
		query += ` ORDER BY unit_price ASC, created_at DESC`
	case domain.SortPriceDesc:
		query += ` ORDER BY unit_price DESC, created_at DESC`
	default:
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list listings", "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to list listings").WithDetails(err.Error())
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		var priceStr, qtyStr string
		if err := rows.Scan(
			&listing.ID,
			&listing.OwnerID,
			&listing.Title,
			&listing.Category,
			&listing.Unit,
			&listing.Location,
			&listing.QualityGrade,
			&priceStr,
			&qtyStr,
			&listing.Status,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to scan listing").WithDetails(err.Error())
		}
		if err := parseListingDecimals(&listing, priceStr, qtyStr); err != nil {
			return nil, errors.NewAppError(errors.StorageError, "failed to parse listing").WithDetails(err.Error())
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.StorageError, "failed to iterate listings").WithDetails(err.Error())
	}

	return listings, nil
}

func (r *listingRepository) UpdateListingQuantity(id uuid.UUID, qty decimal.Decimal, status domain.ListingStatus) error {
	query := `
		UPDATE listings
		SET available_qty = $1, status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.Exec(query, qty.String(), status, time.Now().UTC(), id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23514" { // check_violation: available_qty >= 0
				r.logger.Error("Quantity update would go negative", "listing_id", id, "qty", qty)
				return errors.ErrInsufficientStock
			}
		}
		r.logger.Error("Failed to update listing quantity", "listing_id", id, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update listing quantity").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		return errors.ErrListingNotFound
	}

	r.logger.Info("Listing quantity updated", "listing_id", id, "available_qty", qty, "status", status)
	return nil
}

func (r *listingRepository) UpdateListingStatus(id uuid.UUID, status domain.ListingStatus) error {
	query := `UPDATE listings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update listing status", "listing_id", id, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to update listing status").WithDetails(err.Error())
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewAppError(errors.StorageError, "failed to get rows affected").WithDetails(err.Error())
	}
	if rowsAffected == 0 {
		return errors.ErrListingNotFound
	}

	r.logger.Info("Listing status updated", "listing_id", id, "status", status)
	return nil
}

func parseListingDecimals(listing *domain.Listing, priceStr, qtyStr string) error {
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return err
	}
	qty, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return err
	}
	listing.UnitPrice = price
	listing.AvailableQty = qty
	return nil
}
