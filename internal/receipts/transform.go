package receipts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// transformModelOutput maps the model's generic JSON map onto ReceiptData.
// Models are inconsistent about number formatting, so amount is accepted as
// either a JSON number or a numeric string (with an optional currency
// symbol).
func transformModelOutput(raw map[string]any) (ReceiptData, error) {
	if raw == nil {
		return ReceiptData{}, fmt.Errorf("transform: no model output")
	}

	var r ReceiptData
	if v, ok := raw["merchantName"].(string); ok {
		r.MerchantName = strings.TrimSpace(v)
	}
	if v, ok := raw["description"].(string); ok {
		r.Description = strings.TrimSpace(v)
	}
	if v, ok := raw["date"].(string); ok {
		r.Date = strings.TrimSpace(v)
	}

	switch v := raw["amount"].(type) {
	case float64:
		r.Amount = v
	case string:
		cleaned := strings.TrimSpace(strings.TrimLeft(v, "$£€ "))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return ReceiptData{}, fmt.Errorf("transform: amount %q is not numeric: %w", v, err)
		}
		r.Amount = parsed
	case nil:
		return ReceiptData{}, fmt.Errorf("transform: model output has no amount")
	default:
		return ReceiptData{}, fmt.Errorf("transform: unexpected amount type %T", v)
	}

	r.Confidence = 0.95
	return r, nil
}

// normalizeDate coerces common model date formats to "YYYY-MM-DD". Anything
// unparseable falls back to today, matching what the upload flow promises
// the user.
func normalizeDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	for _, layout := range []string{"01/02/2006", "01/02/06", "2006/01/02", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}
