package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flawlesshq/payssion-gateway/gateway"
	"github.com/flawlesshq/payssion-gateway/handler"
	"github.com/flawlesshq/payssion-gateway/infra/config"
	"github.com/flawlesshq/payssion-gateway/infra/logger"
	"github.com/flawlesshq/payssion-gateway/infra/middle"
	"github.com/flawlesshq/payssion-gateway/infra/opensearch"
	"github.com/flawlesshq/payssion-gateway/infra/response"
	"github.com/flawlesshq/payssion-gateway/payssion"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

var (
	openSearchLogger *opensearch.Logger
)

func init() {
	// Load Env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Load Env: %v, relying on process environment", err)
	}
	// init conf
	_ = config.App()

	// Initialize OpenSearch client and audit logger
	cfg := config.GetAppConfig()
	if cfg.EnableLogging {
		osClient, err := opensearch.NewClient(cfg)
		if err != nil {
			log.Printf("Failed to initialize OpenSearch client: %v", err)
			log.Println("Continuing without OpenSearch logging...")
		} else {
			openSearchLogger = opensearch.NewLogger(osClient)
			log.Println("OpenSearch logging initialized successfully")
		}
	} else {
		log.Println("OpenSearch logging is disabled")
	}

	logger.InitGlobalLogger(openSearchLogger)
}

// auditAdapter bridges the notification processor's audit hook to the
// OpenSearch notification index.
type auditAdapter struct {
	logger *opensearch.Logger
}

func (a *auditAdapter) LogNotification(ctx context.Context, event payssion.NotificationEvent) {
	err := a.logger.LogNotification(ctx, opensearch.NotificationLog{
		OrderID:           event.OrderID,
		PMID:              event.PMID,
		Amount:            event.Amount,
		Currency:          event.Currency,
		State:             event.State,
		Outcome:           event.Outcome,
		SignatureMismatch: event.SignatureMismatch,
	})
	if err != nil {
		logger.Warn("Failed to index notification audit record", logger.LogContext{
			Provider: "payssion",
			Fields: map[string]any{
				"order_id": event.OrderID,
				"error":    err.Error(),
			},
		})
	}
}

func main() {
	cfg := config.GetAppConfig()

	// Merchant settings: decoded and validated at startup so a broken
	// configuration fails fast instead of producing empty signature inputs.
	settingsStorage, err := config.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open settings storage: %v", err)
	}
	defer settingsStorage.Close()

	merchantID := config.GetEnv("MERCHANT_ID", "default")
	settings, err := settingsStorage.LoadMerchantSettings(merchantID, "payssion")
	if err != nil {
		log.Fatalf("Gateway is not configured: %v", err)
	}

	// Transaction store
	store, err := gateway.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open transaction store: %v", err)
	}
	defer store.Close()

	// Customer notifier
	var notifier gateway.Notifier
	if cfg.SMTPHost != "" {
		notifier = gateway.NewMailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	} else {
		log.Println("SMTP not configured, customer notifications will only be logged")
		notifier = gateway.LogNotifier{}
	}

	// Payssion gateway via the registry
	notifyURL := cfg.BaseURL + "/gateway/payssion"
	checkoutURL := cfg.BaseURL + "/checkout"

	gwConf := settings.ConfigMap()
	gwConf["notifyURL"] = notifyURL
	gwConf["checkoutURL"] = checkoutURL
	if !cfg.Sandbox {
		gwConf["environment"] = "production"
	}

	gw, err := gateway.Create("payssion", gwConf)
	if err != nil {
		log.Fatalf("Failed to create payment gateway: %v", err)
	}

	var audit payssion.AuditLogger
	if openSearchLogger != nil {
		audit = &auditAdapter{logger: openSearchLogger}
	}

	processor := payssion.NewNotificationProcessor(settings, store, notifier, gw, audit)

	// Handlers
	paymentHandler := handler.NewPaymentHandler(gw, store, config.App().Validator)
	notifyHandler := handler.NewNotifyHandler(processor, checkoutURL)
	healthHandler := handler.NewHealthHandler(openSearchLogger != nil)

	// Chi Define Routes
	r := chi.NewRouter()

	// Basic Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	// Security and logging middleware
	r.Use(middle.PanicRecoveryMiddleware())
	r.Use(middle.SecurityHeadersMiddleware())
	r.Use(middle.RequestLoggingMiddleware())

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300, // Preflight cache time (second)
	}))

	// Health check endpoint
	r.Get("/health", healthHandler.Health)

	// Provider notification routes (unauthenticated by nature; the
	// signature inside the payload is the only trust anchor)
	r.Route("/gateway/payssion", func(r chi.Router) {
		r.HandleFunc("/", notifyHandler.HandleNotification)
		r.Get("/return", notifyHandler.HandleReturn)
	})

	// Checkout API
	r.Route("/v1", func(r chi.Router) {
		r.Post("/payment", paymentHandler.Authorize)
		r.Get("/payment/methods", paymentHandler.PaymentMethods)
	})

	// Not Found
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusNotFound, response.Response{Success: false, Message: "Not Found"})
	})

	// Create a context that listens for interrupt and terminate signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run the HTTP server in a goroutine
	go func() {
		server := &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Port),
			Handler:           r,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 60 * time.Second,
		}
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err.Error())
		}
	}()

	log.Println("Gateway is running on", cfg.Port)

	// Block until a signal is received
	<-ctx.Done()

	log.Println("Gateway is shutting down on", cfg.Port)
	log.Println("Shutting down gracefully...")
}
