package oversea

import "sync"

// parallelCacheLookup checks the cache for every pending leaf before the
// first provider pass, deduplicating lookups by text hash and fanning them
// out across goroutines. Provider dispatch stays strictly sequential for
// deterministic progress; only this read-side prefetch runs concurrently.
//
// It returns the hits keyed by text hash and the leaves that missed, in
// their original order. Leaves sharing a text share one lookup but each
// keeps its own entry in the miss list.
func parallelCacheLookup(cache TranslationCache, leaves []Leaf, targetLang string) (map[string]string, []Leaf) {
	if cache == nil || len(leaves) == 0 {
		return make(map[string]string), leaves
	}

	uniqueHashes := make(map[string]bool, len(leaves))
	for _, leaf := range leaves {
		uniqueHashes[HashText(leaf.Text)] = true
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	results := make(chan lookupResult, len(uniqueHashes))
	var wg sync.WaitGroup

	for hash := range uniqueHashes {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			if val, ok := cache.Get(CacheKey(h, targetLang)); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h, found: false}
			}
		}(hash)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	hits := make(map[string]string)
	for result := range results {
		if result.found {
			hits[result.hash] = result.value
		}
	}

	var misses []Leaf
	for _, leaf := range leaves {
		if _, ok := hits[HashText(leaf.Text)]; !ok {
			misses = append(misses, leaf)
		}
	}
	return hits, misses
}
