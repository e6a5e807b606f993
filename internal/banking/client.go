// Package banking is a thin client for the Capital One Nessie sandbox, the
// system of record for customers, accounts, purchases and merchants. The
// sandbox authenticates with an API key passed as the key query parameter on
// every request.
package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/logger"
)

// DefaultBaseURL is the public sandbox endpoint.
const DefaultBaseURL = "http://api.nessieisreal.com"

// API is the subset of the sandbox the rest of the service consumes.
// Handlers and jobs depend on this interface so tests can substitute mocks.
type API interface {
	Customers(ctx context.Context) ([]domain.Customer, error)
	Customer(ctx context.Context, customerID string) (domain.Customer, error)
	Accounts(ctx context.Context) ([]domain.Account, error)
	Account(ctx context.Context, accountID string) (domain.Account, error)
	CustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error)
	AccountPurchases(ctx context.Context, accountID string) ([]domain.Purchase, error)
	CreatePurchase(ctx context.Context, accountID string, req CreatePurchaseRequest) (domain.Purchase, error)
	Merchants(ctx context.Context) ([]domain.Merchant, error)
	Merchant(ctx context.Context, merchantID string) (domain.Merchant, error)
}

// CreatePurchaseRequest is the write shape for POST /accounts/{id}/purchases.
type CreatePurchaseRequest struct {
	MerchantID   string  `json:"merchant_id"`
	Medium       string  `json:"medium"`
	PurchaseDate string  `json:"purchase_date"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
}

// APIError is a non-2xx sandbox response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sandbox returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the sandbox over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different sandbox host, e.g. a local
// fake in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a sandbox client. apiKey must be a valid Nessie key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Customers lists all sandbox customers.
func (c *Client) Customers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := c.get(ctx, "/customers", &out); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

// Customer fetches one customer by ID.
func (c *Client) Customer(ctx context.Context, customerID string) (domain.Customer, error) {
	var out domain.Customer
	if err := c.get(ctx, "/customers/"+url.PathEscape(customerID), &out); err != nil {
		return domain.Customer{}, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	return out, nil
}

// Accounts lists all sandbox accounts.
func (c *Client) Accounts(ctx context.Context) ([]domain.Account, error) {
	var out []domain.Account
	if err := c.get(ctx, "/accounts", &out); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return out, nil
}

// Account fetches one account by ID.
func (c *Client) Account(ctx context.Context, accountID string) (domain.Account, error) {
	var out domain.Account
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID), &out); err != nil {
		return domain.Account{}, fmt.Errorf("get account %s: %w", accountID, err)
	}
	return out, nil
}

// CustomerAccounts lists the accounts belonging to a customer.
func (c *Client) CustomerAccounts(ctx context.Context, customerID string) ([]domain.Account, error) {
	var out []domain.Account
	if err := c.get(ctx, "/customers/"+url.PathEscape(customerID)+"/accounts", &out); err != nil {
		return nil, fmt.Errorf("list accounts for customer %s: %w", customerID, err)
	}
	return out, nil
}

// AccountPurchases lists the purchases made from an account.
func (c *Client) AccountPurchases(ctx context.Context, accountID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/purchases", &out); err != nil {
		return nil, fmt.Errorf("list purchases for account %s: %w", accountID, err)
	}
	return out, nil
}

// CreatePurchase records a new purchase against an account. The sandbox
// adjusts the account balance itself.
func (c *Client) CreatePurchase(ctx context.Context, accountID string, req CreatePurchaseRequest) (domain.Purchase, error) {
	var out createPurchaseResponse
	if err := c.post(ctx, "/accounts/"+url.PathEscape(accountID)+"/purchases", req, &out); err != nil {
		return domain.Purchase{}, fmt.Errorf("create purchase on account %s: %w", accountID, err)
	}
	return out.ObjectCreated, nil
}

// createPurchaseResponse wraps the sandbox's creation envelope.
type createPurchaseResponse struct {
	Code          int             `json:"code"`
	Message       string          `json:"message"`
	ObjectCreated domain.Purchase `json:"objectCreated"`
}

// Merchants lists all sandbox merchants.
func (c *Client) Merchants(ctx context.Context) ([]domain.Merchant, error) {
	var out []domain.Merchant
	if err := c.get(ctx, "/merchants", &out); err != nil {
		return nil, fmt.Errorf("list merchants: %w", err)
	}
	return out, nil
}

// Merchant fetches one merchant by ID.
func (c *Client) Merchant(ctx context.Context, merchantID string) (domain.Merchant, error) {
	var out domain.Merchant
	if err := c.get(ctx, "/merchants/"+url.PathEscape(merchantID), &out); err != nil {
		return domain.Merchant{}, fmt.Errorf("get merchant %s: %w", merchantID, err)
	}
	return out, nil
}

// MerchantDirectory fetches all merchants keyed by ID, the join shape the
// categorizer consumes.
func MerchantDirectory(ctx context.Context, api API) (map[string]domain.Merchant, error) {
	merchants, err := api.Merchants(ctx)
	if err != nil {
		return nil, err
	}
	dir := make(map[string]domain.Merchant, len(merchants))
	for _, m := range merchants {
		dir[m.ID] = m
	}
	return dir, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("build URL: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	log := logger.FromContext(ctx)
	log.Debug().Str("method", method).Str("path", path).Msg("sandbox request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

var _ API = (*Client)(nil)
