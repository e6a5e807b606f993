package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/lifelens/lifelens/internal/api/middleware"
	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/finance"
)

// FinanceHandler serves the spending analytics endpoints. Purchases come
// from the banking sandbox and flow through the categorizer before any
// aggregation.
type FinanceHandler struct {
	bank        banking.API
	categorizer *finance.Categorizer
	log         zerolog.Logger
}

// NewFinanceHandler creates a new finance handler.
func NewFinanceHandler(bank banking.API, categorizer *finance.Categorizer, log zerolog.Logger) *FinanceHandler {
	return &FinanceHandler{
		bank:        bank,
		categorizer: categorizer,
		log:         log,
	}
}

// categorizedPurchases joins an account's purchases with the merchant
// directory and runs the categorizer.
func (h *FinanceHandler) categorizedPurchases(r *http.Request, accountID string) ([]domain.CategorizedPurchase, error) {
	ctx := r.Context()

	purchases, err := h.bank.AccountPurchases(ctx, accountID)
	if err != nil {
		return nil, err
	}

	merchants, err := banking.MerchantDirectory(ctx, h.bank)
	if err != nil {
		return nil, err
	}

	return h.categorizer.CategorizeAll(purchases, merchants), nil
}

// Spending handles GET /api/finance/spending?accountId=
func (h *FinanceHandler) Spending(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireQuery(w, r, "accountId")
	if !ok {
		return
	}

	categorized, err := h.categorizedPurchases(r, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load purchases")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load purchases")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"spending":   finance.SpendingByCategory(categorized),
	})
}

// Trends handles GET /api/finance/trends?accountId=&period=
func (h *FinanceHandler) Trends(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireQuery(w, r, "accountId")
	if !ok {
		return
	}

	granularity := domain.Granularity(r.URL.Query().Get("period"))
	if granularity == "" {
		granularity = domain.GranularityMonthly
	}
	if !granularity.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "period must be daily, weekly or monthly")
		return
	}

	purchases, err := h.bank.AccountPurchases(r.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load purchases")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load purchases")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"period":     granularity,
		"trends":     finance.SpendingTrends(purchases, granularity),
	})
}

// Anomalies handles GET /api/finance/anomalies?accountId=&threshold=
func (h *FinanceHandler) Anomalies(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireQuery(w, r, "accountId")
	if !ok {
		return
	}
	threshold := queryFloat(r, "threshold", 0)

	categorized, err := h.categorizedPurchases(r, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load purchases")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load purchases")
		return
	}

	anomalies := finance.DetectSpendingAnomalies(categorized, threshold)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"anomalies":  anomalies,
		"count":      len(anomalies),
	})
}

// Recurring handles GET /api/finance/recurring?accountId=&days=&min=
func (h *FinanceHandler) Recurring(w http.ResponseWriter, r *http.Request) {
	accountID, ok := requireQuery(w, r, "accountId")
	if !ok {
		return
	}
	days := queryInt(r, "days", 0)
	min := queryInt(r, "min", 0)

	categorized, err := h.categorizedPurchases(r, accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load purchases")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load purchases")
		return
	}

	recurring := finance.IdentifyRecurringExpenses(categorized, days, min)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"recurring":  recurring,
		"count":      len(recurring),
	})
}

// Score handles GET /api/finance/score?customerId=&income=
func (h *FinanceHandler) Score(w http.ResponseWriter, r *http.Request) {
	customerID, ok := requireQuery(w, r, "customerId")
	if !ok {
		return
	}
	income := queryFloat(r, "income", 0)

	ctx := r.Context()
	accounts, err := h.bank.CustomerAccounts(ctx, customerID)
	if err != nil {
		h.log.Error().Err(err).Str("customer_id", customerID).Msg("Failed to load accounts")
		middleware.WriteError(w, http.StatusBadGateway, "Failed to load accounts")
		return
	}

	var purchases []domain.Purchase
	for _, account := range accounts {
		accountPurchases, err := h.bank.AccountPurchases(ctx, account.ID)
		if err != nil {
			h.log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to load purchases")
			middleware.WriteError(w, http.StatusBadGateway, "Failed to load purchases")
			return
		}
		purchases = append(purchases, accountPurchases...)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"customer_id": customerID,
		"score":       finance.FinancialHealthScore(accounts, purchases, income),
	})
}
