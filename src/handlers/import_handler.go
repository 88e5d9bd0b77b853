package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/ledgerbook/backend/src/config"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/parsers/ledgercsv"
	"github.com/username/ledgerbook/backend/src/security/validation"
	"github.com/username/ledgerbook/backend/src/services"
	"github.com/username/ledgerbook/backend/src/store"
	"github.com/username/ledgerbook/backend/src/utils"
)

type ImportHandler struct {
	ledgerService services.LedgerService
}

func NewImportHandler(ledgerService services.LedgerService) *ImportHandler {
	return &ImportHandler{ledgerService: ledgerService}
}

// HandleImportTransactions accepts a multipart CSV upload under the "file"
// field and inserts its rows into the client's ledgers. Unusable rows are
// skipped, not fatal; the response reports both counts.
func (h *ImportHandler) HandleImportTransactions(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.FromContext(r.Context()).Warn("Failed to parse import upload", "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Failed to process upload or file too large (max %d MB)",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure the 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB",
			config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateCSVContentType(fileHeader.Header.Get("Content-Type")); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.ledgerService.ImportTransactions(userID, clientID, file)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			utils.SendJSONError(w, "Client not found", http.StatusNotFound)
		case errors.Is(err, ledgercsv.ErrInvalidFormat):
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.FromContext(r.Context()).Error("Transaction import failed", "clientID", clientID, "error", err)
			utils.SendJSONError(w, "Failed to import transactions", http.StatusInternalServerError)
		}
		return
	}

	logger.FromContext(r.Context()).Info("Transactions imported", "clientID", clientID,
		"filename", fileHeader.Filename, "imported", result.Imported, "skipped", result.Skipped)
	utils.SendJSON(w, result, http.StatusOK)
}
