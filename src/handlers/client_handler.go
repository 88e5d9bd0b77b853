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
	"github.com/username/ledgerbook/backend/src/security/validation"
	"github.com/username/ledgerbook/backend/src/services"
	"github.com/username/ledgerbook/backend/src/store"
	"github.com/username/ledgerbook/backend/src/utils"
)

type ClientHandler struct {
	ledgerService services.LedgerService
}

func NewClientHandler(ledgerService services.LedgerService) *ClientHandler {
	return &ClientHandler{ledgerService: ledgerService}
}

type clientRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (req *clientRequest) sanitizeAndValidate() error {
	req.Name = strings.TrimSpace(validation.SanitizeText(req.Name))
	req.Code = strings.TrimSpace(req.Code)
	req.Phone = strings.TrimSpace(validation.SanitizeText(req.Phone))
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateStringNotEmpty(req.Name, "client name"); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Name, validation.MaxNameLength, "client name"); err != nil {
		return err
	}
	if err := validation.ValidateClientCode(req.Code); err != nil {
		return err
	}
	if err := validation.ValidateStringMaxLength(req.Phone, validation.MaxPhoneLength, "phone"); err != nil {
		return err
	}
	switch req.Status {
	case "", models.ClientStatusActive, models.ClientStatusInactive, models.ClientStatusArchived:
	default:
		return errors.New("invalid client status")
	}
	return nil
}

func (h *ClientHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	clients, err := store.ListClients(database.DB, userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to list clients", "error", err)
		utils.SendJSONError(w, "Failed to list clients", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, clients, http.StatusOK)
}

func (h *ClientHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	client := &models.Client{
		UserID: userID,
		Name:   req.Name,
		Code:   req.Code,
		Phone:  req.Phone,
		Email:  req.Email,
		Status: req.Status,
	}
	if err := store.CreateClient(database.DB, client); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			utils.SendJSONError(w, "Client code already in use", http.StatusConflict)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to create client", "error", err)
		utils.SendJSONError(w, "Failed to create client", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Client created", "clientID", client.ID, "code", client.Code)
	utils.SendJSON(w, client, http.StatusCreated)
}

// HandleGetClientLedger returns the interactive view of one client: both
// currency ledgers in display order plus their summaries.
func (h *ClientHandler) HandleGetClientLedger(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	clientID, err := clientIDParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid client id", http.StatusBadRequest)
		return
	}

	view, err := h.ledgerService.GetClientLedger(userID, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Client not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to load client ledger", "clientID", clientID, "error", err)
		utils.SendJSONError(w, "Failed to load client ledger", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, view, http.StatusOK)
}

func (h *ClientHandler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	clientID, err := clientIDParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid client id", http.StatusBadRequest)
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.sanitizeAndValidate(); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	client := &models.Client{
		ID:     clientID,
		UserID: userID,
		Name:   req.Name,
		Code:   req.Code,
		Phone:  req.Phone,
		Email:  req.Email,
		Status: req.Status,
	}
	if client.Status == "" {
		client.Status = models.ClientStatusActive
	}
	if err := store.UpdateClient(database.DB, client); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.SendJSONError(w, "Client not found or update blocked", http.StatusNotFound)
		case errors.Is(err, store.ErrDuplicateCode):
			utils.SendJSONError(w, "Client code already in use", http.StatusConflict)
		default:
			logger.FromContext(r.Context()).Error("Failed to update client", "clientID", clientID, "error", err)
			utils.SendJSONError(w, "Failed to update client", http.StatusInternalServerError)
		}
		return
	}
	utils.SendJSON(w, client, http.StatusOK)
}

func (h *ClientHandler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	clientID, err := clientIDParam(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid client id", http.StatusBadRequest)
		return
	}

	if err := store.DeleteClient(database.DB, userID, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Client not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to delete client", "clientID", clientID, "error", err)
		utils.SendJSONError(w, "Failed to delete client", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("Client deleted", "clientID", clientID)
	w.WriteHeader(http.StatusNoContent)
}

func clientIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
}
