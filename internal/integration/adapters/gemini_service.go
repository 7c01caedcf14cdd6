// Package adapters provides implementations for external service integrations.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/finance-tracker/bookkeeping/internal/application/adapter"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiService implements the AICategorizationService using Google Gemini.
type GeminiService struct {
	apiKey    string
	modelName string
	endpoint  string
}

// NewGeminiService creates a new Gemini service instance.
func NewGeminiService(apiKey, modelName string) *GeminiService {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

// WithEndpoint points the client at a non-default API endpoint.
func (s *GeminiService) WithEndpoint(endpoint string) *GeminiService {
	s.endpoint = endpoint
	return s
}

// IsAvailable checks if the Gemini service is available and properly configured.
func (s *GeminiService) IsAvailable() bool {
	return s.apiKey != ""
}

// Classify asks Gemini to place each transaction in one of the offered categories.
func (s *GeminiService) Classify(ctx context.Context, request *adapter.AICategorizationRequest) ([]*adapter.AICategorizationResult, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("gemini service is not configured")
	}
	if len(request.Transactions) == 0 || len(request.Categories) == 0 {
		return nil, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(s.apiKey)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.modelName)
	model.SetTemperature(0.2)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(request)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}

	results, err := parseClassifications(text, request)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return results, nil
}

// buildPrompt creates the prompt for Gemini.
func buildPrompt(request *adapter.AICategorizationRequest) string {
	var sb strings.Builder

	sb.WriteString(`You are an expert bookkeeper. Assign each bank transaction below to exactly one of the listed categories.

RULES:
- Use ONLY category ids from the CATEGORIES list. Never invent a category.
- Base the choice on the merchant first, then the description and the amount.
- If no category fits, leave the transaction out of the answer.
- Confidence is a number between 0 and 1.

CATEGORIES:
`)
	for _, cat := range request.Categories {
		fmt.Fprintf(&sb, "- ID: %s, Path: %s\n", cat.ID, cat.Path)
	}

	sb.WriteString("\nTRANSACTIONS:\n")
	for _, tx := range request.Transactions {
		fmt.Fprintf(&sb, "- ID: %s, Merchant: %q, Description: %q, Amount: %s, Direction: %s, Date: %s",
			tx.ID, tx.Merchant, tx.Description, tx.Amount, tx.Direction, tx.Date)
		if tx.ProviderCode != "" {
			fmt.Fprintf(&sb, ", Provider hint: %s", tx.ProviderCode)
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`
Respond with a JSON array. Each element must be:
{
  "transaction_id": "uuid of the transaction",
  "category_id": "uuid of the chosen category",
  "confidence": 0.0-1.0,
  "reasoning": "one short sentence"
}

RESPONSE FORMAT: return only the JSON array, no additional text.
`)

	return sb.String()
}

// geminiClassification represents the raw response from Gemini.
type geminiClassification struct {
	TransactionID string  `json:"transaction_id"`
	CategoryID    string  `json:"category_id"`
	Confidence    float64 `json:"confidence"`
	Reasoning     string  `json:"reasoning"`
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok && text != "" {
			return string(text), nil
		}
	}
	return "", fmt.Errorf("no text content in response")
}

// parseClassifications keeps only answers naming a requested transaction and
// an offered category. The first answer per transaction wins.
func parseClassifications(text string, request *adapter.AICategorizationRequest) ([]*adapter.AICategorizationResult, error) {
	// Clean the response (remove markdown code blocks if present)
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []geminiClassification
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	wantTx := make(map[uuid.UUID]bool, len(request.Transactions))
	for _, tx := range request.Transactions {
		wantTx[tx.ID] = true
	}
	offered := make(map[uuid.UUID]bool, len(request.Categories))
	for _, cat := range request.Categories {
		offered[cat.ID] = true
	}

	results := make([]*adapter.AICategorizationResult, 0, len(raw))
	seen := make(map[uuid.UUID]bool, len(raw))
	for _, r := range raw {
		txID, err := uuid.Parse(r.TransactionID)
		if err != nil || !wantTx[txID] || seen[txID] {
			continue
		}
		catID, err := uuid.Parse(r.CategoryID)
		if err != nil || !offered[catID] {
			continue
		}
		seen[txID] = true
		results = append(results, &adapter.AICategorizationResult{
			TransactionID: txID,
			CategoryID:    catID,
			Confidence:    min(max(r.Confidence, 0), 1),
			Reasoning:     r.Reasoning,
		})
	}
	return results, nil
}
