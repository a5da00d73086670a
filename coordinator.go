package oversea

import (
	"context"

	"github.com/sirupsen/logrus"
)

// CoordinatorConfig configures a batch translation run.
type CoordinatorConfig struct {
	BatchSize  int               // Max leaves per provider request (default: DefaultBatchSize)
	MaxPasses  int               // Pass budget before leftovers degrade to Missed (default: DefaultMaxPasses)
	TargetLang string            // Target language for cache keys (default: DefaultTargetLang)
	Cache      TranslationCache  // Optional translation cache
	Progress   ProgressFunc      // Optional progress sink
	Logger     logrus.FieldLogger // Optional logger
}

// Coordinator resolves a flattened leaf sequence against a BatchTranslator.
// It partitions pending leaves into bounded batches, reconciles provider
// responses item by item, and iterates in passes until every leaf resolves
// or the pass budget runs out. All state is owned by a single Translate
// call; a Coordinator is safe to reuse across sequential runs.
type Coordinator struct {
	provider BatchTranslator
	cfg      CoordinatorConfig
}

// CoordinatorStats reports run-level counters alongside the resolved leaves.
type CoordinatorStats struct {
	CachedCount int // Leaves resolved from cache without a provider round-trip
	PassesRun   int // Passes actually executed
}

// NewCoordinator creates a coordinator. The provider is injected, never
// looked up globally.
func NewCoordinator(provider BatchTranslator, cfg CoordinatorConfig) *Coordinator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTargetLang
	}
	return &Coordinator{provider: provider, cfg: cfg}
}

// Translate resolves every input leaf to a terminal status. The output has
// exactly the cardinality, path set and order of the input, no matter how
// the provider behaves: provider errors and malformed responses requeue the
// whole batch, silently dropped items requeue individually, and anything
// still unresolved after the pass budget keeps its original text with
// StatusMissed. Only a context error aborts the run.
func (c *Coordinator) Translate(ctx context.Context, leaves []Leaf) ([]ResolvedLeaf, CoordinatorStats, error) {
	var stats CoordinatorStats
	if c.provider == nil {
		return nil, stats, &TranslationError{Message: "coordinator: no provider configured"}
	}

	total := len(leaves)
	resolved := make(map[string]string, total)
	statuses := make(map[string]TranslationStatus, total)

	pending := make([]Leaf, len(leaves))
	copy(pending, leaves)

	// Cache pre-pass: hits resolve without a provider round-trip.
	if c.cfg.Cache != nil && len(pending) > 0 {
		hits, misses := parallelCacheLookup(c.cfg.Cache, pending, c.cfg.TargetLang)
		for _, leaf := range pending {
			if text, ok := hits[HashText(leaf.Text)]; ok {
				resolved[leaf.Path] = text
				statuses[leaf.Path] = StatusTranslated
			}
		}
		stats.CachedCount = len(pending) - len(misses)
		pending = misses
	}

	c.emit(ProgressEvent{
		Stage:          StageTranslating,
		Status:         ProgressStarted,
		TotalItems:     total,
		ProcessedItems: len(resolved),
		Percent:        percent(len(resolved), total),
	})

	for pass := 1; pass <= c.cfg.MaxPasses && len(pending) > 0; pass++ {
		stats.PassesRun = pass
		batches := chunkLeaves(pending, c.cfg.BatchSize)
		var requeued []Leaf

		for i, batch := range batches {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}

			result, err := c.provider.TranslateBatch(ctx, batch)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return nil, stats, ctx.Err()
				}
				// Transient provider failure: the whole batch retries next pass.
				c.logf(logrus.Fields{"pass": pass, "chunk": i + 1, "size": len(batch)},
					"batch failed, requeued: %v", err)
				requeued = append(requeued, batch...)
			case result == nil:
				requeued = append(requeued, batch...)
			default:
				requeued = append(requeued, c.reconcile(batch, result, resolved, statuses)...)
			}

			c.emit(ProgressEvent{
				Stage:          StageTranslating,
				Status:         ProgressInProgress,
				Pass:           pass,
				Chunk:          i + 1,
				ChunkTotal:     len(batches),
				TotalItems:     total,
				ProcessedItems: len(resolved),
				Percent:        percent(len(resolved), total),
			})
		}

		pending = requeued
		c.emit(ProgressEvent{
			Stage:          StageTranslating,
			Status:         ProgressPassCompleted,
			Pass:           pass,
			TotalItems:     total,
			ProcessedItems: len(resolved),
			Percent:        percent(len(resolved), total),
		})
	}

	// Whatever survived every pass keeps its original text.
	for _, leaf := range pending {
		resolved[leaf.Path] = leaf.Text
		statuses[leaf.Path] = StatusMissed
	}
	if len(pending) > 0 {
		c.logf(logrus.Fields{"missed": len(pending), "passes": stats.PassesRun},
			"pass budget exhausted")
	}

	out := make([]ResolvedLeaf, 0, total)
	for _, leaf := range leaves {
		out = append(out, ResolvedLeaf{
			Path:   leaf.Path,
			Text:   resolved[leaf.Path],
			Status: statuses[leaf.Path],
		})
	}

	c.emit(ProgressEvent{
		Stage:          StageTranslating,
		Status:         ProgressCompleted,
		TotalItems:     total,
		ProcessedItems: total,
		Percent:        100,
	})
	return out, stats, nil
}

// reconcile applies one well-formed batch response and returns the leaves
// the provider silently dropped. Response items whose path was not in the
// request are ignored rather than inserted.
func (c *Coordinator) reconcile(batch []Leaf, result *BatchResult, resolved map[string]string, statuses map[string]TranslationStatus) []Leaf {
	requested := make(map[string]string, len(batch))
	for _, leaf := range batch {
		requested[leaf.Path] = leaf.Text
	}

	seen := make(map[string]bool, len(batch))
	for _, item := range result.Translations {
		original, ok := requested[item.Path]
		if !ok || seen[item.Path] {
			continue
		}
		seen[item.Path] = true

		if item.ShouldTranslate && item.TranslatedText != "" {
			resolved[item.Path] = item.TranslatedText
			statuses[item.Path] = StatusTranslated
			if c.cfg.Cache != nil {
				_ = c.cfg.Cache.Set(CacheKey(HashText(original), c.cfg.TargetLang), item.TranslatedText)
			}
		} else {
			resolved[item.Path] = original
			statuses[item.Path] = StatusNotNeeded
		}
	}

	var dropped []Leaf
	for _, leaf := range batch {
		if !seen[leaf.Path] {
			dropped = append(dropped, leaf)
		}
	}
	return dropped
}

func (c *Coordinator) emit(e ProgressEvent) {
	if c.cfg.Progress != nil {
		c.cfg.Progress(e)
	}
}

func (c *Coordinator) logf(fields logrus.Fields, format string, args ...any) {
	if c.cfg.Logger != nil {
		c.cfg.Logger.WithFields(fields).Warnf(format, args...)
	}
}

// chunkLeaves splits leaves into contiguous slices of at most size elements,
// preserving order.
func chunkLeaves(leaves []Leaf, size int) [][]Leaf {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var batches [][]Leaf
	for start := 0; start < len(leaves); start += size {
		end := start + size
		if end > len(leaves) {
			end = len(leaves)
		}
		batches = append(batches, leaves[start:end])
	}
	return batches
}
