package oversea

import "context"

// Default coordinator parameters, matching the top-level entry point contract.
const (
	// DefaultBatchSize is the maximum number of leaves per provider request.
	DefaultBatchSize = 50
	// DefaultMaxPasses is the number of reconciliation passes before
	// unresolved leaves degrade to StatusMissed.
	DefaultMaxPasses = 3
	// DefaultTargetLang is the language products are translated into.
	DefaultTargetLang = "en"
)

// TranslationStatus is the terminal classification of a single leaf.
type TranslationStatus string

const (
	// StatusTranslated means the provider supplied replacement text and
	// flagged the leaf as needing translation.
	StatusTranslated TranslationStatus = "translated"
	// StatusNotNeeded means the provider returned the leaf but flagged no
	// translation required (or supplied no text); the original is kept.
	StatusNotNeeded TranslationStatus = "not_needed"
	// StatusMissed means no pass produced a response for the leaf before the
	// pass budget was exhausted; the original is kept.
	StatusMissed TranslationStatus = "missed"
)

// Leaf is one scalar value of a flattened document, addressed by a dotted
// and bracketed path such as "sku_options[0].options[2].title".
type Leaf struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// ResolvedLeaf is the terminal state of one input Leaf. The coordinator
// guarantees exactly one ResolvedLeaf per input Leaf, in input order.
type ResolvedLeaf struct {
	Path   string            `json:"path"`
	Text   string            `json:"text"`
	Status TranslationStatus `json:"status"`
}

// TranslationItem is one element of a provider response. The provider gives
// no guarantee that every requested path appears, that paths appear once, or
// that order is preserved; the coordinator reconciles.
type TranslationItem struct {
	Path            string `json:"path"`
	OriginalText    string `json:"original_text"`
	ShouldTranslate bool   `json:"should_translate"`
	TranslatedText  string `json:"translated_text,omitempty"`
}

// BatchResult is the structured response to one batch request.
type BatchResult struct {
	Translations []TranslationItem `json:"translations"`
}

// BatchTranslator is the interface for AI translation backends. An
// implementation receives a bounded batch of leaves and returns zero or more
// result items, possibly incomplete or out of order.
type BatchTranslator interface {
	TranslateBatch(ctx context.Context, leaves []Leaf) (*BatchResult, error)
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslationReport summarizes how a document's leaves resolved.
type TranslationReport struct {
	TotalLeaves     int `json:"total_leaves"`
	TranslatedCount int `json:"translated_count"`
	NotNeededCount  int `json:"not_needed_count"`
	MissedCount     int `json:"missed_count"`
	CachedCount     int `json:"cached_count"`

	// Statuses maps each leaf path to its terminal status.
	Statuses map[string]TranslationStatus `json:"statuses,omitempty"`
}

// ProductResult is the outcome of TranslateProductData.
type ProductResult struct {
	// Data is the merged output document. It is always structurally complete:
	// translation gaps surface in the Report, never as missing fields.
	Data *Document `json:"data"`

	Report TranslationReport `json:"report"`
}
