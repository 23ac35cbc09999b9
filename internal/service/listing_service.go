package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
	"agrimarket/internal/grading"
)

// ListingService owns produce listings and their available quantity.
type ListingService struct {
	store  domain.Store
	grader grading.Grader
	logger *slog.Logger
}

func NewListingService(store domain.Store, grader grading.Grader, logger *slog.Logger) *ListingService {
	return &ListingService{
		store:  store,
		grader: grader,
		logger: logger,
	}
}

type CreateListingRequest struct {
	OwnerID   uuid.UUID
	Title     string
	Category  string
	Unit      string
	Location  string
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	// Image is optional; when present the listing is graded before storage.
	Image []byte
}

func (s *ListingService) CreateListing(req *CreateListingRequest) (*domain.Listing, error) {
	if req.UnitPrice.IsNegative() {
		return nil, errors.NewAppError(errors.InvalidInput, "unit price must not be negative")
	}
	if !req.Quantity.IsPositive() {
		return nil, errors.NewAppError(errors.InvalidInput, "quantity must be positive")
	}
	if req.Title == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "title is required")
	}

	owner, err := s.store.Users().GetUser(req.OwnerID)
	if err != nil {
		return nil, err
	}
	if owner.Role != domain.RoleFarmer {
		return nil, errors.NewAppError(errors.Forbidden, "only farmers can create listings")
	}

	grade := "Not Graded"
	if len(req.Image) > 0 {
		report, err := s.grader.Grade(req.Image)
		if err != nil {
			s.logger.Warn("Quality grading failed, storing ungraded", "error", err)
		} else {
			grade = report.Grade
			s.logger.Info("Produce graded",
				"grade", report.Grade,
				"confidence", report.Confidence,
				"freshness", report.FreshnessScore)
		}
	}

	listing := &domain.Listing{
		ID:           uuid.New(),
		OwnerID:      req.OwnerID,
		Title:        req.Title,
		Category:     req.Category,
		Unit:         req.Unit,
		Location:     req.Location,
		QualityGrade: grade,
		UnitPrice:    req.UnitPrice,
		AvailableQty: req.Quantity,
		Status:       domain.ListingActive,
	}

	if err := s.store.Listings().CreateListing(listing); err != nil {
		return nil, err
	}

	s.logger.Info("Listing created", "listing_id", listing.ID, "owner_id", listing.OwnerID)
	return listing, nil
}

func (s *ListingService) GetListing(id uuid.UUID) (*domain.Listing, error) {
	return s.store.Listings().GetListing(id)
}

func (s *ListingService) ListActiveListings(filter domain.ListingFilter) ([]domain.Listing, error) {
	return s.store.Listings().ListActiveListings(filter)
}

// WithdrawListing soft-deletes an active listing. Listings referenced by bids
// or transactions are never removed, only withdrawn.
func (s *ListingService) WithdrawListing(id, actingOwnerID uuid.UUID) error {
	return s.store.WithTransaction(func(tx domain.Store) error {
		listing, err := tx.Listings().GetListingForUpdate(id)
		if err != nil {
			return err
		}
		if listing.OwnerID != actingOwnerID {
			return errors.NewAppError(errors.Forbidden, "caller does not own the listing")
		}
		if listing.Status != domain.ListingActive {
			return errors.NewAppErrorf(errors.InvalidState, "listing is %s", listing.Status)
		}
		return tx.Listings().UpdateListingStatus(id, domain.ListingWithdrawn)
	})
}
