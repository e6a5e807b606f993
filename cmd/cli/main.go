package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/finance"
	"github.com/lifelens/lifelens/internal/health"
	"github.com/lifelens/lifelens/internal/insight"
	"github.com/lifelens/lifelens/internal/logger"
)

// Offline analyzer: runs the analytics core over exported JSON files
// without touching the sandbox or any cloud service.
func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "spending":
		runSpending(log)
	case "anomalies":
		runAnomalies(log)
	case "recurring":
		runRecurring(log)
	case "score":
		runScore(log)
	case "health":
		runHealth(log)
	case "insight":
		runInsight(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("LifeLens CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  spending   Categorized spending breakdown from a purchases export")
	fmt.Println("  anomalies  Flag unusually large purchases per category")
	fmt.Println("  recurring  Identify recurring expenses")
	fmt.Println("  score      Financial health score from accounts and purchases")
	fmt.Println("  health     Health score, averages and anomalies from a log export")
	fmt.Println("  insight    Combined health and spending insight")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// readJSON decodes one JSON file into out. Paths are required by the
// callers, so an empty path is a usage error there, not here.
func readJSON(log zerolog.Logger, path string, out any) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read file")
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to parse JSON")
	}
}

func loadCategorized(log zerolog.Logger, purchasesPath, merchantsPath string) []domain.CategorizedPurchase {
	var purchases []domain.Purchase
	readJSON(log, purchasesPath, &purchases)

	merchants := make(map[string]domain.Merchant)
	if merchantsPath != "" {
		var list []domain.Merchant
		readJSON(log, merchantsPath, &list)
		for _, m := range list {
			merchants[m.ID] = m
		}
	}

	return finance.NewCategorizer().CategorizeAll(purchases, merchants)
}

func runSpending(log zerolog.Logger) {
	fs := flag.NewFlagSet("spending", flag.ExitOnError)
	purchasesPath := fs.String("purchases", "", "purchases JSON export")
	merchantsPath := fs.String("merchants", "", "merchants JSON export (optional)")
	fs.Parse(os.Args[2:])

	if *purchasesPath == "" {
		log.Fatal().Msg("Error: -purchases is required")
	}

	categorized := loadCategorized(log, *purchasesPath, *merchantsPath)
	fmt.Printf("=== Spending by category (%d purchases) ===\n", len(categorized))
	for _, s := range finance.SpendingByCategory(categorized) {
		if s.Amount == 0 {
			continue
		}
		fmt.Printf("%-18s %10.2f  (%.1f%%)\n", s.Category, s.Amount, s.Percentage)
	}
}

func runAnomalies(log zerolog.Logger) {
	fs := flag.NewFlagSet("anomalies", flag.ExitOnError)
	purchasesPath := fs.String("purchases", "", "purchases JSON export")
	merchantsPath := fs.String("merchants", "", "merchants JSON export (optional)")
	threshold := fs.Float64("threshold", 0, "standard-deviation multiple (default 1.5)")
	fs.Parse(os.Args[2:])

	if *purchasesPath == "" {
		log.Fatal().Msg("Error: -purchases is required")
	}

	categorized := loadCategorized(log, *purchasesPath, *merchantsPath)
	anomalies := finance.DetectSpendingAnomalies(categorized, *threshold)

	fmt.Printf("=== Anomalous purchases (%d) ===\n", len(anomalies))
	for _, a := range anomalies {
		name := a.MerchantName
		if name == "" {
			name = a.Description
		}
		fmt.Printf("%s  %-18s %10.2f  %s\n", a.PurchaseDate, a.Category, a.Amount, name)
	}
}

func runRecurring(log zerolog.Logger) {
	fs := flag.NewFlagSet("recurring", flag.ExitOnError)
	purchasesPath := fs.String("purchases", "", "purchases JSON export")
	merchantsPath := fs.String("merchants", "", "merchants JSON export (optional)")
	days := fs.Int("days", 0, "timeframe in days (default 90)")
	min := fs.Int("min", 0, "minimum occurrences (default 2)")
	fs.Parse(os.Args[2:])

	if *purchasesPath == "" {
		log.Fatal().Msg("Error: -purchases is required")
	}

	categorized := loadCategorized(log, *purchasesPath, *merchantsPath)
	recurring := finance.IdentifyRecurringExpenses(categorized, *days, *min)

	fmt.Printf("=== Recurring expenses (%d) ===\n", len(recurring))
	for _, p := range recurring {
		fmt.Printf("%s  %10.2f  %s\n", p.PurchaseDate, p.Amount, p.Description)
	}
}

func runScore(log zerolog.Logger) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	accountsPath := fs.String("accounts", "", "accounts JSON export")
	purchasesPath := fs.String("purchases", "", "purchases JSON export")
	income := fs.Float64("income", 0, "monthly income (optional)")
	fs.Parse(os.Args[2:])

	if *accountsPath == "" || *purchasesPath == "" {
		log.Fatal().Msg("Error: -accounts and -purchases are required")
	}

	var accounts []domain.Account
	readJSON(log, *accountsPath, &accounts)
	var purchases []domain.Purchase
	readJSON(log, *purchasesPath, &purchases)

	score := finance.FinancialHealthScore(accounts, purchases, *income)
	fmt.Printf("Financial health score: %d/100\n", score)
}

func runHealth(log zerolog.Logger) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	logsPath := fs.String("logs", "", "health logs JSON export")
	fs.Parse(os.Args[2:])

	if *logsPath == "" {
		log.Fatal().Msg("Error: -logs is required")
	}

	var logs []domain.HealthLog
	readJSON(log, *logsPath, &logs)

	fmt.Printf("Health score:     %d/100 (%d logs)\n", health.Score(logs), len(logs))
	fmt.Printf("Average sleep:    %.1f h\n", health.AverageSleep(logs))
	fmt.Printf("Average meals:    %.1f\n", health.AverageMeals(logs))
	fmt.Printf("Average exercise: %.1f min\n", health.AverageExercise(logs))

	anomalies := health.DetectAnomalies(logs)
	fmt.Printf("\n=== Anomalies (%d) ===\n", len(anomalies))
	for _, a := range anomalies {
		fmt.Printf("%s  [%s]  %s\n", a.Date, a.Severity, a.Anomaly)
	}
}

func runInsight(log zerolog.Logger) {
	fs := flag.NewFlagSet("insight", flag.ExitOnError)
	logsPath := fs.String("logs", "", "health logs JSON export")
	purchasesPath := fs.String("purchases", "", "purchases JSON export (optional)")
	merchantsPath := fs.String("merchants", "", "merchants JSON export (optional)")
	fs.Parse(os.Args[2:])

	if *logsPath == "" {
		log.Fatal().Msg("Error: -logs is required")
	}

	var logs []domain.HealthLog
	readJSON(log, *logsPath, &logs)

	var categorized []domain.CategorizedPurchase
	if *purchasesPath != "" {
		categorized = loadCategorized(log, *purchasesPath, *merchantsPath)
	}

	ins := insight.Generate(logs, categorized)
	fmt.Println("=== Health ===")
	fmt.Println(ins.HealthSummary)
	fmt.Println("\n=== Finances ===")
	fmt.Println(ins.FinancialSummary)
	fmt.Println("\n=== Recommendations ===")
	for i, rec := range ins.Recommendations {
		fmt.Printf("%d. %s\n", i+1, rec)
	}
}
