package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
	"agrimarket/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
	}
}

type CreateListingRequest struct {
	OwnerID   string `json:"owner_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Unit      string `json:"unit"`
	Location  string `json:"location"`
	UnitPrice string `json:"unit_price"`
	Quantity  string `json:"quantity"`
	// ImageBase64 carries an optional produce photo for quality grading.
	ImageBase64 string `json:"image_base64,omitempty"`
}

func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	ownerID, appErr := parseUUID(req.OwnerID, "owner_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid unit_price format").WithDetails(err.Error()))
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid quantity format").WithDetails(err.Error()))
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		image, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			writeError(w, errors.NewAppError(errors.InvalidInput, "invalid image_base64 encoding").WithDetails(err.Error()))
			return
		}
	}

	listing, err := h.listingService.CreateListing(&service.CreateListingRequest{
		OwnerID:   ownerID,
		Title:     req.Title,
		Category:  req.Category,
		Unit:      req.Unit,
		Location:  req.Location,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Image:     image,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, appErr := parseUUID(mux.Vars(r)["listing_id"], "listing_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	listing, err := h.listingService.GetListing(listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) ListActiveListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.ListingFilter{
		Category:     query.Get("category"),
		Location:     query.Get("location"),
		QualityGrade: query.Get("quality_grade"),
		SortKey:      domain.ListingSort(query.Get("sort")),
	}

	listings, err := h.listingService.ListActiveListings(filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if listings == nil {
		// Marshal as an empty array, never a missing field.
		listings = []domain.Listing{}
	}

	writeJSON(w, http.StatusOK, listings)
}

type WithdrawListingRequest struct {
	ActingOwnerID string `json:"acting_owner_id"`
}

func (h *ListingHandler) WithdrawListing(w http.ResponseWriter, r *http.Request) {
	listingID, appErr := parseUUID(mux.Vars(r)["listing_id"], "listing_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req WithdrawListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	ownerID, appErr := parseUUID(req.ActingOwnerID, "acting_owner_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	if err := h.listingService.WithdrawListing(listingID, ownerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}
