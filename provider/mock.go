package provider

import (
	"context"
	"sync"

	"github.com/oversea-labs/oversea"
)

// MockProvider is a mock AI provider for testing. It translates via a
// dictionary and can simulate the failure modes the coordinator must
// tolerate: failed calls, silently dropped items and empty responses.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	DropPaths    map[string]bool   // Paths omitted from every response
	DropAll      bool              // Return well-formed but empty responses
	FailCalls    int               // Fail the first N calls with a retryable error

	CallCount int            // Number of times TranslateBatch was called
	LastBatch []oversea.Leaf // Last batch received

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"红色T恤":  "Red T-shirt",
			"蓝色连衣裙": "Blue Dress",
			"带线接线板": "Wired Power Strip",
			"黑色":    "Black",
			"现货":    "In Stock",
		},
	}
}

// TranslateBatch returns mock translations. Texts found in the dictionary
// come back translated; everything else comes back flagged as not needing
// translation, mirroring how a real model classifies URLs and codes.
func (m *MockProvider) TranslateBatch(ctx context.Context, leaves []oversea.Leaf) (*oversea.BatchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastBatch = leaves

	if m.CallCount <= m.FailCalls {
		return nil, &oversea.ProviderError{Message: "mock failure", Retryable: true}
	}

	result := &oversea.BatchResult{}
	if m.DropAll {
		return result, nil
	}

	for _, leaf := range leaves {
		if m.DropPaths[leaf.Path] {
			continue
		}
		item := oversea.TranslationItem{
			Path:         leaf.Path,
			OriginalText: leaf.Text,
		}
		if translated, ok := m.Translations[leaf.Text]; ok {
			item.ShouldTranslate = true
			item.TranslatedText = translated
		}
		result.Translations = append(result.Translations, item)
	}

	return result, nil
}

// Reset resets the call count and last batch.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount = 0
	m.LastBatch = nil
}

// Verify MockProvider implements BatchTranslator
var _ BatchTranslator = (*MockProvider)(nil)
