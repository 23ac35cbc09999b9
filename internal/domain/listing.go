package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingWithdrawn ListingStatus = "withdrawn"
)

type Listing struct {
	ID           uuid.UUID       `json:"listing_id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Location     string          `json:"location"`
	QualityGrade string          `json:"quality_grade"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	AvailableQty decimal.Decimal `json:"available_qty"`
	Status       ListingStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListingFilter narrows ListActiveListings. Zero values mean "no filter".
type ListingFilter struct {
	Category     string
	Location     string
	QualityGrade string
	SortKey      ListingSort
}

type ListingSort string

const (
	SortNewest    ListingSort = "newest"
	SortPriceAsc  ListingSort = "price_asc"
	SortPriceDesc ListingSort = "price_desc"
)

type ListingRepository interface {
	CreateListing(listing *Listing) error
	GetListing(id uuid.UUID) (*Listing, error)
	// GetListingForUpdate locks the listing row for the duration of the
	// surrounding transaction. Only meaningful inside WithTransaction.
	GetListingForUpdate(id uuid.UUID) (*Listing, error)
	ListActiveListings(filter ListingFilter) ([]Listing, error)
	UpdateListingQuantity(id uuid.UUID, qty decimal.Decimal, status ListingStatus) error
	UpdateListingStatus(id uuid.UUID, status ListingStatus) error
}
