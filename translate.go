package oversea

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Translator is the top-level entry point: it splits a product document,
// flattens the translatable part, resolves it through the coordinator,
// rebuilds the structure and merges the held-out part back. The provider is
// injected; independent translation runs share no mutable state.
type Translator struct {
	provider   BatchTranslator
	cache      TranslationCache
	targetLang string
	batchSize  int
	maxPasses  int
	progress   ProgressFunc
	logger     logrus.FieldLogger
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithBatchSize sets the maximum number of leaves per provider request.
func WithBatchSize(n int) TranslatorOption {
	return func(t *Translator) {
		t.batchSize = n
	}
}

// WithMaxPasses sets the pass budget for unresolved leaves.
func WithMaxPasses(n int) TranslatorOption {
	return func(t *Translator) {
		t.maxPasses = n
	}
}

// WithTargetLang sets the target language code.
func WithTargetLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.targetLang = lang
	}
}

// WithProgress sets the progress sink.
func WithProgress(fn ProgressFunc) TranslatorOption {
	return func(t *Translator) {
		t.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator with the given provider.
func NewTranslator(provider BatchTranslator, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:   provider,
		targetLang: DefaultTargetLang,
		batchSize:  DefaultBatchSize,
		maxPasses:  DefaultMaxPasses,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// TranslateProductData translates a product document. The output document is
// always structurally complete; translation gaps are reported through leaf
// statuses and progress events, never as an error. Provider failures degrade
// individual leaves to StatusMissed; only caller misconfiguration and
// context errors are returned.
func (t *Translator) TranslateProductData(ctx context.Context, doc *Document) (*ProductResult, error) {
	if t.provider == nil {
		return nil, &TranslationError{Message: "translator: no provider configured"}
	}
	if doc == nil {
		return nil, &TranslationError{Message: "translator: nil document"}
	}

	translatable, nonTranslatable := Split(doc)
	leaves := Flatten(translatable)

	coord := NewCoordinator(t.provider, CoordinatorConfig{
		BatchSize:  t.batchSize,
		MaxPasses:  t.maxPasses,
		TargetLang: t.targetLang,
		Cache:      t.cache,
		Progress:   t.progress,
		Logger:     t.logger,
	})

	resolved, stats, err := coord.Translate(ctx, leaves)
	if err != nil {
		return nil, err
	}

	rebuilt := Rebuild(translatable, resolved)
	merged := Merge(rebuilt, nonTranslatable)

	report := TranslationReport{
		TotalLeaves: len(resolved),
		CachedCount: stats.CachedCount,
		Statuses:    make(map[string]TranslationStatus, len(resolved)),
	}
	for _, leaf := range resolved {
		report.Statuses[leaf.Path] = leaf.Status
		switch leaf.Status {
		case StatusTranslated:
			report.TranslatedCount++
		case StatusNotNeeded:
			report.NotNeededCount++
		case StatusMissed:
			report.MissedCount++
		}
	}

	return &ProductResult{Data: merged, Report: report}, nil
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// BatchSize returns the configured batch size.
func (t *Translator) BatchSize() int {
	return t.batchSize
}

// MaxPasses returns the configured pass budget.
func (t *Translator) MaxPasses() int {
	return t.maxPasses
}
