package receipts

import (
	"fmt"
	"time"
)

// validateReceipt checks a transformed receipt and normalizes the fields the
// downstream purchase record depends on. The merchant name may legitimately
// be empty (crumpled or partial receipts); the amount may not.
func validateReceipt(r ReceiptData, now time.Time) (ReceiptData, error) {
	if r.Amount <= 0 {
		return ReceiptData{}, fmt.Errorf("validate: non-positive amount %v", r.Amount)
	}

	r.Date = normalizeDate(r.Date, now)

	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	return r, nil
}
