package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/finance"
	"github.com/lifelens/lifelens/internal/firestore"
	"github.com/lifelens/lifelens/internal/imagestore"
	"github.com/lifelens/lifelens/internal/jobs/inmemory"
	"github.com/lifelens/lifelens/internal/logger"
	"github.com/lifelens/lifelens/internal/receipts"
	"github.com/lifelens/lifelens/internal/worker"
)

// Standalone job worker. It shares the processor with cmd/api; jobs arrive
// through its own queue, so this binary is mostly useful for draining
// receipt backlogs in isolation.
func main() {
	var (
		bankKey         = flag.String("bank-key", os.Getenv("NESSIE_API_KEY"), "banking sandbox API key (or NESSIE_API_KEY)")
		bankURL         = flag.String("bank-url", envOr("NESSIE_BASE_URL", banking.DefaultBaseURL), "banking sandbox base URL")
		bucket          = flag.String("bucket", os.Getenv("GCS_BUCKET"), "GCS bucket for receipt images (or GCS_BUCKET)")
		projectID       = flag.String("project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project ID (or GOOGLE_CLOUD_PROJECT)")
		credsPath       = flag.String("creds", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"), "service account credentials file")
		model           = flag.String("model", envOr("GEMINI_MODEL", receipts.DefaultModelName), "Gemini model for receipt parsing")
		defaultMerchant = flag.String("default-merchant", os.Getenv("DEFAULT_MERCHANT_ID"), "fallback merchant ID for scanned receipts")
		workers         = flag.Int("workers", 5, "number of concurrent job workers")
	)
	flag.Parse()

	log := logger.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bank := banking.NewClient(*bankKey, banking.WithBaseURL(*bankURL))
	categorizer := finance.NewCategorizer()

	if *projectID == "" {
		log.Fatal().Msg("A GCP project is required (set -project or GOOGLE_CLOUD_PROJECT)")
	}
	store, err := firestore.NewClient(ctx, *projectID, *credsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create document store client")
	}
	defer store.Close()

	var scanPipeline *receipts.Pipeline
	if *bucket != "" {
		images, err := imagestore.New(ctx, *bucket)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", *bucket).Msg("Failed to create image store")
		}
		defer images.Close()

		parser, err := receipts.NewGeminiParser(ctx, *model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		scanPipeline = receipts.NewScanPipeline(images, parser, categorizer, bank, *defaultMerchant)
	} else {
		log.Warn().Msg("No GCS bucket configured - scan jobs will fail")
	}

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, *workers, jobStore)

	processor := worker.NewProcessor(scanPipeline, store, store, bank, categorizer, log)

	if err := jobQueue.Start(ctx, processor.Handle); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Int("workers", *workers).Msg("Worker service started, waiting for jobs...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
