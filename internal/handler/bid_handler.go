package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
	"agrimarket/internal/service"
)

type BidHandler struct {
	bidService         *service.BidService
	marketplaceService *service.MarketplaceService
}

func NewBidHandler(bidService *service.BidService, marketplaceService *service.MarketplaceService) *BidHandler {
	return &BidHandler{
		bidService:         bidService,
		marketplaceService: marketplaceService,
	}
}

type PlaceBidRequest struct {
	ListingID  string `json:"listing_id"`
	BidderID   string `json:"bidder_id"`
	UnitAmount string `json:"unit_amount"`
	Quantity   string `json:"quantity"`
	Message    string `json:"message,omitempty"`
}

func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	listingID, appErr := parseUUID(req.ListingID, "listing_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	bidderID, appErr := parseUUID(req.BidderID, "bidder_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	unitAmount, err := decimal.NewFromString(req.UnitAmount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid unit_amount format").WithDetails(err.Error()))
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid quantity format").WithDetails(err.Error()))
		return
	}

	bid, err := h.bidService.PlaceBid(&service.PlaceBidRequest{
		ListingID:  listingID,
		BidderID:   bidderID,
		UnitAmount: unitAmount,
		Quantity:   quantity,
		Message:    req.Message,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, bid)
}

func (h *BidHandler) ListBidsForListing(w http.ResponseWriter, r *http.Request) {
	listingID, appErr := parseUUID(mux.Vars(r)["listing_id"], "listing_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	bids, err := h.bidService.ListBidsForListing(listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bids == nil {
		bids = []domain.Bid{}
	}

	writeJSON(w, http.StatusOK, bids)
}

func (h *BidHandler) ListBidsForBidder(w http.ResponseWriter, r *http.Request) {
	bidderID, appErr := parseUUID(mux.Vars(r)["user_id"], "user_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	bids, err := h.bidService.ListBidsForBidder(bidderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if bids == nil {
		bids = []domain.Bid{}
	}

	writeJSON(w, http.StatusOK, bids)
}

type BidDecisionRequest struct {
	ActingOwnerID string `json:"acting_owner_id"`
}

type AcceptBidResponse struct {
	TransactionID string `json:"transaction_id"`
	ExternalRef   string `json:"external_ref"`
	Amount        string `json:"amount"`
	PaymentStatus string `json:"payment_status"`
}

func (h *BidHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	bidID, appErr := parseUUID(mux.Vars(r)["bid_id"], "bid_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req BidDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	ownerID, appErr := parseUUID(req.ActingOwnerID, "acting_owner_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	txn, err := h.marketplaceService.AcceptBidAndReserve(bidID, ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AcceptBidResponse{
		TransactionID: txn.ID.String(),
		ExternalRef:   txn.ExternalRef,
		Amount:        txn.Amount.String(),
		PaymentStatus: string(txn.PaymentStatus),
	})
}

func (h *BidHandler) RejectBid(w http.ResponseWriter, r *http.Request) {
	bidID, appErr := parseUUID(mux.Vars(r)["bid_id"], "bid_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req BidDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	ownerID, appErr := parseUUID(req.ActingOwnerID, "acting_owner_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	if err := h.bidService.RejectBid(bidID, ownerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}
