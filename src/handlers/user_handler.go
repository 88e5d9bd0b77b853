package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/ledgerbook/backend/src/config"
	"github.com/username/ledgerbook/backend/src/database"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/model"
	"github.com/username/ledgerbook/backend/src/security"
	"github.com/username/ledgerbook/backend/src/security/validation"
	"github.com/username/ledgerbook/backend/src/utils"
)

type UserHandler struct {
	authService *security.AuthService
}

func NewUserHandler(authService *security.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user"`
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Username = strings.TrimSpace(validation.SanitizeText(req.Username))
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.ValidateStringNotEmpty(req.Username, "username"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateStringNotEmpty(req.Email, "email"); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Password) < 8 {
		utils.SendJSONError(w, "Password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email}
	if err := user.HashPassword(req.Password); err != nil {
		logger.FromContext(r.Context()).Error("Failed to hash password", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}
	if err := user.CreateUser(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "Username or email already taken", http.StatusConflict)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to create user", "error", err)
		utils.SendJSONError(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("User registered", "userID", user.ID, "username", user.Username)
	utils.SendJSON(w, user, http.StatusCreated)
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		logger.FromContext(r.Context()).Error("Login lookup failed", "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	h.issueSession(w, r, user)
}

func (h *UserHandler) issueSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	accessToken, err := h.authService.CreateToken(user.ID, config.Cfg.AccessTokenExpiry)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create access token", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	session := &model.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := model.CreateSession(database.DB, session); err != nil {
		logger.FromContext(r.Context()).Error("Failed to persist session", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Login failed", http.StatusInternalServerError)
		return
	}

	logger.FromContext(r.Context()).Info("User logged in", "userID", user.ID)
	utils.SendJSON(w, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: session.RefreshToken,
		User:         user,
	}, http.StatusOK)
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, req.RefreshToken)
	if err != nil {
		utils.SendJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}
	if time.Now().After(session.ExpiresAt) {
		utils.SendJSONError(w, "Refresh token expired", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.authService.CreateToken(session.UserID, config.Cfg.AccessTokenExpiry)
	if err != nil {
		logger.FromContext(r.Context()).Error("Failed to create access token on refresh", "userID", session.UserID, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	newRefresh := uuid.New().String()
	expiresAt := time.Now().Add(config.Cfg.RefreshTokenExpiry)
	if err := model.UpdateSessionTokens(database.DB, session.ID, accessToken, newRefresh, expiresAt); err != nil {
		logger.FromContext(r.Context()).Error("Failed to rotate session tokens", "userID", session.UserID, "error", err)
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}

	user, err := model.GetUserByID(database.DB, session.UserID)
	if err != nil {
		utils.SendJSONError(w, "Token refresh failed", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, tokenResponse{AccessToken: accessToken, RefreshToken: newRefresh, User: user}, http.StatusOK)
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tokenString != "" {
		if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
			logger.FromContext(r.Context()).Warn("Failed to delete session on logout", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
