package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/oversea-labs/oversea"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements BatchTranslator using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// systemPrompt instructs the model on the batch translation protocol: one
// result item per input item, with per-item should_translate classification.
const systemPrompt = `Translate flattened product data from a Chinese e-commerce platform into English.

# Task
You will receive a JSON array of path-text pairs. Each pair consists of:
1. A "path" indicating the location of the data in the original structure
2. A "text" containing the Chinese content that needs to be translated

# CRITICAL REQUIREMENT
YOU MUST RETURN EXACTLY ONE TRANSLATION ITEM FOR EACH INPUT ITEM, even if you decide not to translate it. The length of your "translations" array MUST EXACTLY MATCH the length of the input array. Do not skip any items.

# Guidelines
- Analyze each text value to determine if it should be translated
- Use appropriate product terminology in your translations
- Maintain the original meaning while making the translation natural in English
- If a text contains both Chinese and non-Chinese parts, only translate the Chinese parts

# Rules for Determining What Should NOT Be Translated
- URLs, links, image paths, or any web addresses (e.g., "https://", "www.")
- Pure product codes or SKUs without Chinese words (e.g., "A123B456C")
- Pure numeric values (e.g., "220V", "5V 2A")
- Currency values (e.g., "¥31.80", "USD 25")
- Email addresses
- Technical specifications that are standardized (e.g., "AC220-250V", "50/60HZ")
- Any text that consists solely of numbers, symbols, or Latin characters

# Special Translation Rules
- For product codes with Chinese characters or units (e.g., "K36-0.8米-黑"), translate only the Chinese words and units to their English equivalents (e.g., "K36-0.8m-Black") while preserving the code structure
- Preserve all numbers, dashes, and other formatting characters in the original position
- For measurements, convert Chinese units to appropriate English units (e.g., "米" → "m", "厘米" → "cm")

# Response Format
Return a valid JSON object with a single "translations" array. For every input item include:
1. "path": the original path
2. "original_text": the original text
3. "should_translate": boolean flag indicating if the text needs translation
4. "translated_text": the translated text (only when should_translate is true, otherwise null)

Example:
{"translations": [{"path": "product_title_main", "original_text": "带线接线板", "should_translate": true, "translated_text": "Wired Power Strip"}, {"path": "url", "original_text": "https://detail.1688.com/offer/1.html", "should_translate": false, "translated_text": null}]}

Do NOT wrap the response in Markdown code blocks. The order of items in your output should match the order in the input.`

// TranslateBatch translates one batch of leaves using OpenAI.
func (p *OpenAIProvider) TranslateBatch(ctx context.Context, leaves []oversea.Leaf) (*oversea.BatchResult, error) {
	if len(leaves) == 0 {
		return &oversea.BatchResult{}, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(leaves)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &oversea.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &oversea.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

func buildUserMessage(leaves []oversea.Leaf) string {
	var b strings.Builder
	b.WriteString("Translate the following flattened product data from Chinese to English. ")
	b.WriteString("Return ONE translation item for EACH input item.\n\n")
	data, _ := json.Marshal(leaves)
	b.Write(data)
	return b.String()
}

// parseResponse decodes the structured model output. The coordinator
// tolerates missing items; only an undecodable payload is an error.
func parseResponse(content string) (*oversea.BatchResult, error) {
	content = stripCodeFence(content)

	var result oversea.BatchResult
	if err := json.Unmarshal([]byte(content), &result); err == nil && result.Translations != nil {
		return &result, nil
	}

	// Fallback: a bare array of translation items.
	var items []oversea.TranslationItem
	if err := json.Unmarshal([]byte(content), &items); err == nil {
		return &oversea.BatchResult{Translations: items}, nil
	}

	return nil, &oversea.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: true,
	}
}

// stripCodeFence removes Markdown code fences some models wrap JSON in.
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := err.Error()
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(strings.ToLower(errStr), pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements BatchTranslator
var _ BatchTranslator = (*OpenAIProvider)(nil)
