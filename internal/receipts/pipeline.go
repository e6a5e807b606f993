// Package receipts turns photographed receipts into recorded purchases. A
// scan runs as a fixed sequence of steps sharing one State: fetch the image,
// extract fields with the vision model, normalize and validate, categorize,
// then record the purchase in the banking sandbox.
package receipts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lifelens/lifelens/internal/banking"
	"github.com/lifelens/lifelens/internal/domain"
	"github.com/lifelens/lifelens/internal/finance"
	"github.com/lifelens/lifelens/internal/logger"
)

// Step is a single stage of the scan pipeline.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// Pipeline executes steps in order, stopping at the first failure.
type Pipeline struct {
	steps []Step
}

// NewPipeline assembles a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs every step against the shared state.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("receipt pipeline step %d: %w", i+1, err)
		}
	}
	return nil
}

// ImageFetcher retrieves a stored receipt image by its gs:// URI.
type ImageFetcher interface {
	Fetch(ctx context.Context, gcsURI string) (data []byte, mimeType string, err error)
}

// FetchImageStep loads the image bytes from object storage. It is a no-op
// when the caller already supplied the bytes directly.
type FetchImageStep struct {
	Store ImageFetcher
}

func (s *FetchImageStep) Execute(ctx context.Context, state *State) error {
	if len(state.ImageBytes) > 0 {
		return nil
	}
	data, mimeType, err := s.Store.Fetch(ctx, state.GCSURI)
	if err != nil {
		return err
	}
	state.ImageBytes = data
	state.MIMEType = mimeType
	return nil
}

// ParseReceiptStep runs the vision model over the image.
type ParseReceiptStep struct {
	Parser Parser
}

func (s *ParseReceiptStep) Execute(ctx context.Context, state *State) error {
	raw, err := s.Parser.Parse(ctx, state.ImageBytes, state.MIMEType)
	if err != nil {
		return err
	}
	state.RawModelOutput = raw
	return nil
}

// TransformReceiptStep maps the raw model output to ReceiptData and
// validates it. Now is injectable for tests; nil means time.Now.
type TransformReceiptStep struct {
	Now func() time.Time
}

func (s *TransformReceiptStep) Execute(ctx context.Context, state *State) error {
	receipt, err := transformModelOutput(state.RawModelOutput)
	if err != nil {
		return err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	receipt, err = validateReceipt(receipt, now())
	if err != nil {
		return err
	}
	state.Receipt = receipt
	return nil
}

// CategorizeStep resolves the receipt to a spending category. The model's
// one-word description doubles as free-text merchant category input.
type CategorizeStep struct {
	Categorizer *finance.Categorizer
}

func (s *CategorizeStep) Execute(ctx context.Context, state *State) error {
	m := domain.Merchant{
		Name:     state.Receipt.MerchantName,
		Category: state.Receipt.Description,
	}
	categorized := s.Categorizer.Categorize(domain.Purchase{
		Description: state.Receipt.Description,
	}, &m)
	state.Category = categorized.Category
	return nil
}

// RecordPurchaseStep writes the purchase to the banking sandbox. The
// sandbox requires a merchant ID, so the step matches the extracted
// merchant name against the merchant directory; unmatched receipts fall
// back to DefaultMerchantID when configured.
type RecordPurchaseStep struct {
	Bank              banking.API
	DefaultMerchantID string
}

func (s *RecordPurchaseStep) Execute(ctx context.Context, state *State) error {
	merchantID, err := s.resolveMerchant(ctx, state.Receipt.MerchantName)
	if err != nil {
		return err
	}

	purchase, err := s.Bank.CreatePurchase(ctx, state.AccountID, banking.CreatePurchaseRequest{
		MerchantID:   merchantID,
		Medium:       "balance",
		PurchaseDate: state.Receipt.Date,
		Amount:       state.Receipt.Amount,
		Description:  state.Receipt.Description,
	})
	if err != nil {
		return err
	}
	state.Purchase = purchase

	log := logger.FromContext(ctx)
	log.Info().
		Str("purchase_id", purchase.ID).
		Str("merchant_id", merchantID).
		Str("category", string(state.Category)).
		Float64("amount", state.Receipt.Amount).
		Msg("receipt recorded as purchase")
	return nil
}

func (s *RecordPurchaseStep) resolveMerchant(ctx context.Context, name string) (string, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	if want != "" {
		merchants, err := s.Bank.Merchants(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve merchant: %w", err)
		}
		for _, m := range merchants {
			have := strings.ToLower(m.Name)
			if have == want || strings.Contains(have, want) || strings.Contains(want, have) {
				return m.ID, nil
			}
		}
	}
	if s.DefaultMerchantID != "" {
		return s.DefaultMerchantID, nil
	}
	return "", fmt.Errorf("resolve merchant: no match for %q and no default configured", name)
}

// NewScanPipeline assembles the standard five-step receipt scan.
func NewScanPipeline(store ImageFetcher, parser Parser, categorizer *finance.Categorizer, bank banking.API, defaultMerchantID string) *Pipeline {
	return NewPipeline(
		&FetchImageStep{Store: store},
		&ParseReceiptStep{Parser: parser},
		&TransformReceiptStep{},
		&CategorizeStep{Categorizer: categorizer},
		&RecordPurchaseStep{Bank: bank, DefaultMerchantID: defaultMerchantID},
	)
}
