package receipts

import (
	"strings"

	"github.com/lifelens/lifelens/internal/domain"
)

// buildReceiptPrompt constructs the extraction instructions for the vision
// model. The category list is generated from the taxonomy so the model can
// only name categories the service understands.
func buildReceiptPrompt() string {
	var b strings.Builder

	b.WriteString("You are a receipt analyzer.\n\n")
	b.WriteString("Analyze the attached receipt image and extract:\n")
	b.WriteString("1. Merchant/Store name\n")
	b.WriteString("2. The TOTAL amount from the bold highlighted area (just the number)\n")
	b.WriteString("3. Date of purchase in YYYY-MM-DD format\n")
	b.WriteString("4. A one-word description of the kind of purchase, assigned to exactly one category below\n\n")

	b.WriteString("Use ONLY the following categories:\n")
	for _, c := range domain.Categories {
		b.WriteString("  - " + string(c) + "\n")
	}
	b.WriteString("\n")

	b.WriteString("Return ONLY a JSON object with keys: merchantName, amount, date, description.\n")
	b.WriteString("Output STRICT JSON (no comments, no trailing commas, no extra text).\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n")

	return b.String()
}
