package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/ledgerbook/backend/src/database"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/models"
	"github.com/username/ledgerbook/backend/src/security"
	"github.com/username/ledgerbook/backend/src/security/validation"
	"github.com/username/ledgerbook/backend/src/services"
	"github.com/username/ledgerbook/backend/src/store"
	"github.com/username/ledgerbook/backend/src/utils"
)

// pinHeader carries the re-entered transaction PIN on edit and delete
// requests. The gate only stops the browser from skipping the confirmation
// prompt; row ownership is what actually protects the data.
const pinHeader = "X-Transaction-Pin"

type TransactionHandler struct {
	ledgerService services.LedgerService
	pinGate       *security.PINGate
}

func NewTransactionHandler(ledgerService services.LedgerService, pinGate *security.PINGate) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService, pinGate: pinGate}
}

// RequirePIN guards edit and delete endpoints behind the PIN challenge.
func (h *TransactionHandler) RequirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.pinGate.Verify(r.Header.Get(pinHeader)); err != nil {
			logger.FromContext(r.Context()).Warn("Transaction PIN rejected", "path", r.URL.Path)
			utils.SendJSONError(w, "Transaction PIN required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type transactionRequest struct {
	ClientID      int64   `json:"client_id"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"`
	Description   string  `json:"description"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	PaymentMethod string  `json:"payment_method"`
	Reference     string  `json:"reference"`
	Notes         string  `json:"notes"`
}

func (req *transactionRequest) sanitizeAndValidate() error {
	req.Description = strings.TrimSpace(validation.SanitizeText(req.Description))
	req.Notes = strings.TrimSpace(validation.SanitizeText(req.Notes))
	req.Reference = strings.TrimSpace(validation.SanitizeText(req.Reference))
	req.PaymentMethod = strings.TrimSpace(validation.SanitizeText(req.PaymentMethod))

	if err := validation.ValidateCurrency(req.Currency); err != nil {
		return err
	}
	if err := validation.ValidateDate(req.Date, "transaction date"); err != nil {
		return err
	}
	if err := validation.ValidateAmount(req.Debit, "debit"); err != nil {
		return err
	}
	if err := validation.ValidateAmount(req.Credit, "credit"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Description, validation.MaxDescriptionLength, "description"); err != nil {
		return err
	}
	return validation.ValidateStringMaxLength(req.Notes, validation.MaxNotesLength, "notes")
}

func (req *transactionRequest) toModel() *models.Transaction {
	return &models.Transaction{
		ClientID:      req.ClientID,
		Currency:      req.Currency,
		Date:          req.Date,
		Description:   req.Description,
		Debit:         req.Debit,
		Credit:        req.Credit,
		PaymentMethod: req.PaymentMethod,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}
}

// HandleCreateTransaction covers both the entry form and the inline
// quick-add: the caller appends the returned entry to its local snapshot.
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := req.toModel()
	if err := store.CreateTransaction(database.DB, userID, tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Client not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to create transaction", "clientID", req.ClientID, "error", err)
		utils.SendJSONError(w, "Failed to create transaction", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Transaction created", "transactionID", tx.ID,
		"clientID", tx.ClientID, "currency", tx.Currency)
	utils.SendJSON(w, tx, http.StatusCreated)
}

// HandleUpdateTransaction edits an entry and responds with the full
// reloaded client ledger. Local snapshots are replaced wholesale after an
// edit; an update the database reports as touching zero rows is a failure,
// not a success.
func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	txID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx := req.toModel()
	tx.ID = txID
	if err := store.UpdateTransaction(database.DB, userID, tx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Transaction not found or update blocked", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to update transaction", "transactionID", txID, "error", err)
		utils.SendJSONError(w, "Failed to update transaction", http.StatusInternalServerError)
		return
	}

	view, err := h.ledgerService.GetClientLedger(userID, req.ClientID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to reload ledger after edit", "clientID", req.ClientID, "error", err)
		utils.SendJSONError(w, "Transaction updated but ledger reload failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, view, http.StatusOK)
}

// HandleDeleteTransaction permanently removes an entry; the caller patches
// its local snapshot rather than reloading.
func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	txID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteTransaction(database.DB, userID, txID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Transaction not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete transaction", "transactionID", txID, "error", err)
		utils.SendJSONError(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Transaction deleted", "transactionID", txID)
	w.WriteHeader(http.StatusNoContent)
}
