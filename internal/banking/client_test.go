package banking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelens/lifelens/internal/domain"
)

func newTestServer(t *testing.T, wantPath string, status int, payload any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.WriteHeader(status)
		if payload != nil {
			_ = json.NewEncoder(w).Encode(payload)
		}
	}))
}

func TestAccountPurchases(t *testing.T) {
	srv := newTestServer(t, "/accounts/acc1/purchases", http.StatusOK, []domain.Purchase{
		{ID: "p1", MerchantID: "m1", Amount: 4.5, PurchaseDate: "2025-06-01", Description: "latte"},
	})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.AccountPurchases(context.Background(), "acc1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 4.5, got[0].Amount)
}

func TestCreatePurchaseUnwrapsEnvelope(t *testing.T) {
	srv := newTestServer(t, "/accounts/acc1/purchases", http.StatusCreated, map[string]any{
		"code":    201,
		"message": "Created purchase",
		"objectCreated": map[string]any{
			"_id": "p9", "merchant_id": "m1", "amount": 12.0, "purchase_date": "2025-06-02",
		},
	})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := c.CreatePurchase(context.Background(), "acc1", CreatePurchaseRequest{
		MerchantID:   "m1",
		Medium:       "balance",
		PurchaseDate: "2025-06-02",
		Amount:       12.0,
		Description:  "groceries",
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", got.ID)
	assert.Equal(t, "m1", got.MerchantID)
}

func TestErrorResponse(t *testing.T) {
	srv := newTestServer(t, "/customers/nope", http.StatusNotFound, map[string]string{"message": "not found"})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.Customer(context.Background(), "nope")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestMerchantDirectory(t *testing.T) {
	srv := newTestServer(t, "/merchants", http.StatusOK, []domain.Merchant{
		{ID: "m1", Name: "Starbucks", Category: "coffee"},
		{ID: "m2", Name: "Shell", Category: "gas"},
	})
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	dir, err := MerchantDirectory(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, dir, 2)
	assert.Equal(t, "Starbucks", dir["m1"].Name)
}
