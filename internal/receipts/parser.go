package receipts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModelName is the vision model used for receipt extraction.
const DefaultModelName = "gemini-2.5-flash"

// Parser analyzes a receipt image and returns the model's raw JSON output.
// The interface exists so the pipeline can run against a fake in tests.
type Parser interface {
	Parse(ctx context.Context, image []byte, mimeType string) (map[string]any, error)
}

// GeminiParser implements Parser against the Gemini API.
type GeminiParser struct {
	client *genai.Client
	model  string
}

// NewGeminiParser creates a parser. The Gemini API key is taken from the
// environment by the genai client. model defaults to DefaultModelName when
// empty.
func NewGeminiParser(ctx context.Context, model string) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("receipts: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiParser{client: client, model: model}, nil
}

// Parse sends the receipt image with the extraction prompt and decodes the
// model's JSON reply into a generic map.
func (p *GeminiParser) Parse(ctx context.Context, image []byte, mimeType string) (map[string]any, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildReceiptPrompt()},
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("receipts: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("receipts: empty response from model")
	}

	clean := cleanModelJSON(rawText)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return nil, fmt.Errorf("receipts: unmarshal model JSON: %w\nraw response: %s", err, rawText)
	}
	return parsed, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk when the model
// ignores the strict-JSON instructions, keeping only the outermost object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
