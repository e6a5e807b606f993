package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/finance"
)

// fakeBank stubs the sandbox for handler tests. Unused methods panic via
// the embedded nil interface.
type fakeBank struct {
	banking.API
	accounts  map[string][]domain.Account
	purchases map[string][]domain.Purchase
	merchants []domain.Merchant
	err       error
}

func (f *fakeBank) AccountPurchases(ctx context.Context, accountID string) ([]domain.Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchases[accountID], nil
}

func (f *fakeBank) CustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[customerID], nil
}

func (f *fakeBank) Merchants(ctx context.Context) ([]domain.Merchant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.merchants, nil
}

func newFinanceHandler(bank *fakeBank) *FinanceHandler {
	return NewFinanceHandler(bank, finance.NewCategorizer(), zerolog.Nop())
}

func TestFinanceSpending(t *testing.T) {
	bank := &fakeBank{
		purchases: map[string][]domain.Purchase{
			"acc1": {
				{ID: "p1", MerchantID: "m1", Amount: 30, PurchaseDate: "2025-06-01"},
				{ID: "p2", MerchantID: "m1", Amount: 20, PurchaseDate: "2025-06-02"},
			},
		},
		merchants: []domain.Merchant{
			{ID: "m1", Name: "Starbucks", Category: "restaurant"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/finance/spending?accountId=acc1", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(bank).Spending(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		AccountID string                      `json:"account_id"`
		Spending  []domain.SpendingByCategory `json:"spending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acc1", resp.AccountID)
	require.Len(t, resp.Spending, len(domain.Categories))

	byCategory := make(map[domain.Category]domain.SpendingByCategory)
	for _, s := range resp.Spending {
		byCategory[s.Category] = s
	}
	assert.Equal(t, 50.0, byCategory[domain.CategoryFood].Amount)
	assert.Equal(t, 100.0, byCategory[domain.CategoryFood].Percentage)
}

func TestFinanceSpendingRequiresAccount(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/finance/spending", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(&fakeBank{}).Spending(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinanceSpendingUpstreamFailure(t *testing.T) {
	bank := &fakeBank{err: errors.New("sandbox down")}

	req := httptest.NewRequest(http.MethodGet, "/api/finance/spending?accountId=acc1", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(bank).Spending(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFinanceTrends(t *testing.T) {
	bank := &fakeBank{
		purchases: map[string][]domain.Purchase{
			"acc1": {
				{ID: "p1", Amount: 10, PurchaseDate: "2025-05-15"},
				{ID: "p2", Amount: 20, PurchaseDate: "2025-06-03"},
			},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/finance/trends?accountId=acc1&period=monthly", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(bank).Trends(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Period string                 `json:"period"`
		Trends []domain.SpendingTrend `json:"trends"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "monthly", resp.Period)
	require.Len(t, resp.Trends, 2)
	assert.Equal(t, "2025-05", resp.Trends[0].Date)
	assert.Equal(t, "2025-06", resp.Trends[1].Date)
}

func TestFinanceTrendsRejectsBadPeriod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/finance/trends?accountId=acc1&period=hourly", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(&fakeBank{}).Trends(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinanceScore(t *testing.T) {
	bank := &fakeBank{
		accounts: map[string][]domain.Account{
			"cust1": {
				{ID: "acc1", Balance: 7000},
			},
		},
		purchases: map[string][]domain.Purchase{
			"acc1": {},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/finance/score?customerId=cust1", nil)
	rec := httptest.NewRecorder()
	newFinanceHandler(bank).Score(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		CustomerID string `json:"customer_id"`
		Score      int    `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "cust1", resp.CustomerID)
	// High balance with no spending lands above the neutral baseline.
	assert.Greater(t, resp.Score, 50)
}
