// Package finance implements the purchase categorizer, the spending
// aggregators and the financial health scorer. Every function in this
// package is a pure transformation over in-memory collections: no I/O,
// no shared state, no mutation of inputs.
package finance

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lifelens/lifelens/internal/domain"
)

//go:embed keywords.yaml
var embeddedKeywords []byte

// keywordBlock is one category's keyword set. Blocks are matched in slice
// order; the first block with any hit wins.
type keywordBlock struct {
	Category domain.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// keywordRules holds the three matching stages of the categorizer.
type keywordRules struct {
	MerchantCategory []keywordBlock `yaml:"merchant_category"`
	MerchantName     []keywordBlock `yaml:"merchant_name"`
	Description      []keywordBlock `yaml:"description"`
}

// Categorizer assigns a spending category to a purchase from merchant
// metadata. It is immutable after construction and safe for concurrent use.
type Categorizer struct {
	rules keywordRules
}

// NewCategorizer builds a categorizer from the embedded keyword rules.
func NewCategorizer() *Categorizer {
	c, err := newCategorizerFromBytes(embeddedKeywords)
	if err != nil {
		// The embedded rules are part of the build; failing to parse them
		// is a programming error, not a runtime condition.
		panic(fmt.Sprintf("finance: embedded keyword rules invalid: %v", err))
	}
	return c
}

// NewCategorizerFromFile builds a categorizer from a YAML rules file,
// allowing deployments to override the embedded keyword tables.
func NewCategorizerFromFile(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("NewCategorizerFromFile: read %q: %w", path, err)
	}
	c, err := newCategorizerFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("NewCategorizerFromFile: %q: %w", path, err)
	}
	return c, nil
}

func newCategorizerFromBytes(data []byte) (*Categorizer, error) {
	var rules keywordRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse keyword rules: %w", err)
	}

	for _, stage := range [][]keywordBlock{rules.MerchantCategory, rules.MerchantName, rules.Description} {
		for _, block := range stage {
			if !block.Category.Valid() {
				return nil, fmt.Errorf("unknown category %q in keyword rules", block.Category)
			}
			if len(block.Keywords) == 0 {
				return nil, fmt.Errorf("category %q has an empty keyword set", block.Category)
			}
			for _, kw := range block.Keywords {
				if strings.TrimSpace(kw) == "" {
					return nil, fmt.Errorf("category %q has an empty keyword", block.Category)
				}
			}
		}
	}

	return &Categorizer{rules: rules}, nil
}

// Categorize resolves a purchase to exactly one category. Matching is tried
// in three stages, stopping at the first hit:
//
//  1. merchant.Category (free-text) against the merchant_category tables
//  2. merchant.Name against the brand-name tables
//  3. purchase.Description against the description tables
//
// Anything unmatched falls back to CategoryOther. Absent or malformed fields
// are treated as non-matching; this function never fails.
func (c *Categorizer) Categorize(p domain.Purchase, m *domain.Merchant) domain.CategorizedPurchase {
	category := domain.CategoryOther

	if m != nil {
		if cat, ok := matchBlocks(c.rules.MerchantCategory, m.Category); ok {
			category = cat
		} else if cat, ok := matchBlocks(c.rules.MerchantName, m.Name); ok {
			category = cat
		}
	}
	if category == domain.CategoryOther {
		if cat, ok := matchBlocks(c.rules.Description, p.Description); ok {
			category = cat
		}
	}

	out := domain.CategorizedPurchase{
		Purchase: p,
		Category: category,
	}
	if m != nil {
		out.MerchantName = m.Name
	}
	return out
}

// CategorizeAll maps Categorize over a purchase list, joining each purchase
// with its merchant record via the supplied directory (keyed by merchant ID).
// Purchases with no directory entry are categorized from description alone.
func (c *Categorizer) CategorizeAll(purchases []domain.Purchase, merchants map[string]domain.Merchant) []domain.CategorizedPurchase {
	out := make([]domain.CategorizedPurchase, 0, len(purchases))
	for _, p := range purchases {
		if m, ok := merchants[p.MerchantID]; ok {
			out = append(out, c.Categorize(p, &m))
		} else {
			out = append(out, c.Categorize(p, nil))
		}
	}
	return out
}

// matchBlocks lowercases the input and returns the first block containing a
// keyword that is a substring of it. Empty input never matches.
func matchBlocks(blocks []keywordBlock, input string) (domain.Category, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return "", false
	}
	for _, block := range blocks {
		for _, kw := range block.Keywords {
			if strings.Contains(s, kw) {
				return block.Category, true
			}
		}
	}
	return "", false
}
