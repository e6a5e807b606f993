package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lifelens/lifelens/internal/api/handlers"
	"github.com/lifelens/lifelens/internal/api/middleware"
	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/finance"
	"github.com/lifelens/lifelens/internal/firestore"
	"github.com/lifelens/lifelens/internal/imagestore"
	"github.com/lifelens/lifelens/internal/jobs/inmemory"
	"github.com/lifelens/lifelens/internal/logger"
	"github.com/lifelens/lifelens/internal/receipts"
	"github.com/lifelens/lifelens/internal/warehouse"
	"github.com/lifelens/lifelens/internal/worker"
)

func main() {
	var (
		port            = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		bankKey         = flag.String("bank-key", os.Getenv("NESSIE_API_KEY"), "banking sandbox API key (or NESSIE_API_KEY)")
		bankURL         = flag.String("bank-url", envOr("NESSIE_BASE_URL", banking.DefaultBaseURL), "banking sandbox base URL")
		bucket          = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for receipt images (or GCS_BUCKET)")
		projectID       = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or GOOGLE_CLOUD_PROJECT)")
		dataset         = flag.String("dataset", envOr("BQ_DATASET", "lifelens"), "BigQuery dataset for regional trends")
		credsPath       = flag.String("creds", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "service account credentials file")
		keywordsPath    = flag.String("keywords", "", "categorizer rules YAML (defaults to the embedded rules)")
		model           = flag.String("model", envOr("GEMINI_MODEL", receipts.DefaultModelName), "Gemini model for receipt parsing")
		defaultMerchant = flag.String("default-merchant", os.Getenv("DEFAULT_MERCHANT_ID"), "fallback merchant ID for scanned receipts")
		requireAuth     = flag.Bool("require-auth", false, "verify Firebase bearer tokens on every request")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	if *bankKey == "" {
		log.Warn().Msg("No banking API key configured - finance endpoints will fail upstream")
	}
	bank := banking.NewClient(*bankKey, banking.WithBaseURL(*bankURL))

	categorizer := finance.NewCategorizer()
	if *keywordsPath != "" {
		var err error
		categorizer, err = finance.NewCategorizerFromFile(*keywordsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *keywordsPath).Msg("Failed to load categorizer rules")
		}
	}

	if *projectID == "" {
		log.Fatal().Msg("A GCP project is required for the document store (set -project or GOOGLE_CLOUD_PROJECT)")
	}
	store, err := firestore.NewClient(ctx, *projectID, *credsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store client")
	}
	defer store.Close()

	wh, err := warehouse.NewClient(ctx, *projectID, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create warehouse client")
	}
	defer wh.Close()

	var images *imagestore.Store
	if *bucket != "" {
		images, err = imagestore.New(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", *bucket).Msg("Failed to create image store")
		}
		defer images.Close()
	} else {
		log.Warn().Msg("No GCS bucket configured - receipt uploads will be disabled")
	}

	// Receipt scanning needs both the image store and a Gemini client.
	var scanPipeline *receipts.Pipeline
	if images != nil {
		parser, err := receipts.NewGeminiParser(ctx, *model)
		if err != nil {
			log.Warn().Err(err).Msg("Receipt parsing disabled - Gemini client unavailable")
		} else {
			scanPipeline = receipts.NewScanPipeline(images, parser, categorizer, bank, *defaultMerchant)
		}
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, 0, jobStore)

	processor := worker.NewProcessor(scanPipeline, store, store, bank, categorizer, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, processor.Handle); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	financeHandler := handlers.NewFinanceHandler(bank, categorizer, log)
	healthHandler := handlers.NewHealthHandler(store, wh, wh, log)
	insightsHandler := handlers.NewInsightsHandler(store, jobQueue, log)
	var uploader handlers.ImageUploader
	if images != nil {
		uploader = images
	}
	receiptsHandler := handlers.NewReceiptsHandler(uploader, jobQueue, log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	mux := http.NewServeMux()

	// Finance endpoints
	mux.HandleFunc("/api/finance/spending", get(financeHandler.Spending))
	mux.HandleFunc("/api/finance/trends", get(financeHandler.Trends))
	mux.HandleFunc("/api/finance/anomalies", get(financeHandler.Anomalies))
	mux.HandleFunc("/api/finance/recurring", get(financeHandler.Recurring))
	mux.HandleFunc("/api/finance/score", get(financeHandler.Score))

	// Health endpoints
	mux.HandleFunc("/api/health/logs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			healthHandler.CreateLog(w, r)
		case http.MethodGet:
			healthHandler.ListLogs(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/health/logs/latest", get(healthHandler.LatestLog))
	mux.HandleFunc("/api/health/score", get(healthHandler.Score))
	mux.HandleFunc("/api/health/anomalies", get(healthHandler.Anomalies))
	mux.HandleFunc("/api/health/trends", get(healthHandler.Trends))
	mux.HandleFunc("/api/health/trends/regional", get(healthHandler.RegionalTrends))

	// Insight endpoints
	mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			insightsHandler.Generate(w, r)
		case http.MethodGet:
			insightsHandler.List(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})
	mux.HandleFunc("/api/insights/latest", get(insightsHandler.Latest))
	mux.HandleFunc("/api/insights/myths", get(insightsHandler.Myths))

	// Receipt endpoints
	mux.HandleFunc("/api/receipts/upload", post(receiptsHandler.Upload))
	mux.HandleFunc("/api/receipts/parse", post(receiptsHandler.Parse))

	// Job endpoints
	mux.HandleFunc("/api/jobs", get(jobsHandler.ListJobs))
	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	var verifier middleware.TokenVerifier
	if *requireAuth {
		verifier = store
	}

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(verifier)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

// get restricts a handler to GET requests.
func get(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodGet, h)
}

// post restricts a handler to POST requests.
func post(h http.HandlerFunc) http.HandlerFunc {
	return methodOnly(http.MethodPost, h)
}

func methodOnly(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h(w, r)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
