package main

import (
	"crypto/tls"
	"encoding/json"
	stdlog "log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/ledgerbook/backend/src/config"
	"github.com/username/ledgerbook/backend/src/database"
	"github.com/username/ledgerbook/backend/src/handlers"
	"github.com/username/ledgerbook/backend/src/logger"
	"github.com/username/ledgerbook/backend/src/security"
	"github.com/username/ledgerbook/backend/src/services"
	"golang.org/x/time/rate"
)

func proxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.FrontendBaseURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-Transaction-Pin")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("LedgerBook backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		stdlog.Fatal("JWT_SECRET configuration invalid: must be at least 32 characters")
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	sessionCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)

	authService := security.NewAuthService(config.Cfg.JWTSecret)
	pinGate := security.NewPINGate(config.Cfg.TransactionPINHash)

	ledgerService := services.NewLedgerService(
		database.DB,
		config.Cfg.BrandName,
		config.Cfg.ConfidentialityNote,
		config.Cfg.KESPerUSD,
		sessionCache,
	)

	userHandler := handlers.NewUserHandler(authService)
	clientHandler := handlers.NewClientHandler(ledgerService)
	txHandler := handlers.NewTransactionHandler(ledgerService, pinGate)
	importHandler := handlers.NewImportHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(ledgerService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(proxyHeadersMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "LedgerBook Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", userHandler.LoginUserHandler)
			r.Post("/auth/register", userHandler.RegisterUserHandler)
			r.Post("/auth/refresh", userHandler.RefreshTokenHandler)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Post("/auth/logout", userHandler.LogoutUserHandler)

			r.Get("/clients", clientHandler.HandleListClients)
			r.Post("/clients", clientHandler.HandleCreateClient)
			r.Get("/clients/{clientID}/ledger", clientHandler.HandleGetClientLedger)
			r.Put("/clients/{clientID}", clientHandler.HandleUpdateClient)
			r.Delete("/clients/{clientID}", clientHandler.HandleDeleteClient)

			r.Post("/transactions", txHandler.HandleCreateTransaction)
			r.Post("/clients/{clientID}/transactions/import", importHandler.HandleImportTransactions)
			r.With(txHandler.RequirePIN).Put("/transactions/{transactionID}", txHandler.HandleUpdateTransaction)
			r.With(txHandler.RequirePIN).Delete("/transactions/{transactionID}", txHandler.HandleDeleteTransaction)

			r.Get("/clients/{clientID}/statement", reportHandler.HandleDownloadStatement)
			r.Post("/statements/combined", reportHandler.HandleCombinedStatement)
			r.Get("/analytics", reportHandler.HandleGetAnalytics)
			r.Get("/analytics/export/pdf", reportHandler.HandleExportAnalyticsPDF)
			r.Get("/analytics/export/csv", reportHandler.HandleExportAnalyticsCSV)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
		}
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
