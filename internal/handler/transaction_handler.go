package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
	"agrimarket/internal/service"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
}

func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

type CompletePaymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *TransactionHandler) CompletePayment(w http.ResponseWriter, r *http.Request) {
	txnID, appErr := parseUUID(mux.Vars(r)["transaction_id"], "transaction_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req CompletePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	if err := h.transactionService.CompletePayment(txnID, req.PaymentMethod); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"payment_status": "completed"})
}

type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

func (h *TransactionHandler) FailPayment(w http.ResponseWriter, r *http.Request) {
	txnID, appErr := parseUUID(mux.Vars(r)["transaction_id"], "transaction_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	var req FailPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	if err := h.transactionService.FailPayment(txnID, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"payment_status": "failed"})
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txnID, appErr := parseUUID(mux.Vars(r)["transaction_id"], "transaction_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	txn, err := h.transactionService.GetTransaction(txnID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, txn)
}

func (h *TransactionHandler) ListTransactionsForParty(w http.ResponseWriter, r *http.Request) {
	userID, appErr := parseUUID(mux.Vars(r)["user_id"], "user_id")
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	txns, err := h.transactionService.ListTransactionsForParty(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}

	writeJSON(w, http.StatusOK, txns)
}
