package receipts

import (
	"github.com/lifelens/lifelens/internal/domain"
)

// ReceiptData is the structured result of analyzing one receipt image.
type ReceiptData struct {
	MerchantName string  `json:"merchantName"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"` // "YYYY-MM-DD"
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

// State is the shared state threaded through the pipeline steps.
type State struct {
	UserID    string
	AccountID string
	GCSURI    string

	ImageBytes []byte
	MIMEType   string

	RawModelOutput map[string]any
	Receipt        ReceiptData

	Category domain.Category
	Purchase domain.Purchase
}
