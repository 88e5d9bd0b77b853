package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/ledgerbook/backend/src/analytics"
	"github.com/username/ledgerbook/backend/src/ledger"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/reports"
	"github.com/username/ledgerbook/backend/src/services"
	"github.com/username/ledgerbook/backend/src/store"
	"github.com/username/ledgerbook/backend/src/utils"
)

type ReportHandler struct {
	ledgerService services.LedgerService
}

func NewReportHandler(ledgerService services.LedgerService) *ReportHandler {
	return &ReportHandler{ledgerService: ledgerService}
}

// HandleDownloadStatement streams the client statement PDF as a browser
// download. Nothing is written to the response until the document is fully
// built, so a generation failure never leaks a partial file.
func (h *ReportHandler) HandleDownloadStatement(w http.ResponseWriter, r *http.Request) {
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

	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = reports.ReportTypeFull
	}
	switch reportType {
	case reports.ReportTypeFull, reports.ReportTypeSummary, reports.ReportTypeKESOnly, reports.ReportTypeUSDOnly:
	default:
		utils.SendJSONError(w, fmt.Sprintf("Unknown report type %q", reportType), http.StatusBadRequest)
		return
	}

	artifact, filename, err := h.ledgerService.BuildStatement(userID, clientID, reportType, nil)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Client not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Statement generation failed", "clientID", clientID, "error", err)
		utils.SendJSONError(w, fmt.Sprintf("Statement generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	sendAttachment(w, artifact, filename, "application/pdf")
}

type combinedStatementRequest struct {
	ClientIDs    []int64 `json:"client_ids"`
	SessionToken string  `json:"session_token,omitempty"`
}

// HandleCombinedStatement renders one statement merging several clients'
// ledgers. With a session token it reuses the cached analytics snapshot;
// without one it reads the ledgers fresh from the database.
func (h *ReportHandler) HandleCombinedStatement(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req combinedStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var artifact []byte
	var filename string
	var err error
	if req.SessionToken != "" {
		artifact, filename, err = h.ledgerService.CombinedStatementFromSession(userID, req.SessionToken, req.ClientIDs)
	} else {
		artifact, filename, err = h.ledgerService.BuildCombinedStatement(userID, req.ClientIDs, nil)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoClientsGiven), errors.Is(err, ledger.ErrNoClients):
			utils.SendJSONError(w, "Select at least one client", http.StatusBadRequest)
		case errors.Is(err, services.ErrSessionExpired):
			utils.SendJSONError(w, "Analytics session expired, reload the report", http.StatusGone)
		default:
			logger.FromContext(r.Context()).Error("Combined statement generation failed", "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Statement generation failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	sendAttachment(w, artifact, filename, "application/pdf")
}

// HandleGetAnalytics runs the bucketizer for the requested window and
// returns the rollup plus a session token for follow-up exports.
func (h *ReportHandler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	preset, start, end := rangeParams(r)
	session, err := h.ledgerService.RunAnalytics(userID, preset, start, end)
	if err != nil {
		h.sendAnalyticsError(w, r, err)
		return
	}
	utils.SendJSON(w, session, http.StatusOK)
}

func (h *ReportHandler) HandleExportAnalyticsPDF(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	preset, start, end := rangeParams(r)
	artifact, filename, err := h.ledgerService.ExportAnalyticsPDF(userID, preset, start, end)
	if err != nil {
		h.sendAnalyticsError(w, r, err)
		return
	}
	sendAttachment(w, artifact, filename, "application/pdf")
}

func (h *ReportHandler) HandleExportAnalyticsCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	preset, start, end := rangeParams(r)
	artifact, filename, err := h.ledgerService.ExportAnalyticsCSV(userID, preset, start, end)
	if err != nil {
		h.sendAnalyticsError(w, r, err)
		return
	}
	sendAttachment(w, artifact, filename, "text/csv")
}

func (h *ReportHandler) sendAnalyticsError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, analytics.ErrIncompleteRange) || strings.Contains(err.Error(), "date") {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Error("Analytics run failed", "error", err)
	utils.SendJSONError(w, "Failed to generate report", http.StatusInternalServerError)
}

func rangeParams(r *http.Request) (preset, start, end string) {
	q := r.URL.Query()
	preset = q.Get("range")
	if preset == "" {
		preset = analytics.RangeCurrentMonth
	}
	return preset, q.Get("start"), q.Get("end")
}

func sendAttachment(w http.ResponseWriter, artifact []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact)))
	w.Write(artifact)
}
