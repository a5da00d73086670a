package oversea

import (
	"context"
	"encoding/json"
	"testing"
)

func TestTranslateProductData(t *testing.T) {
	provider := newStubTranslator()
	translator := NewTranslator(provider, WithTargetLang("en"))

	doc, err := ParseDocument([]byte(sampleProductJSON))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	result, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateProductData() error = %v", err)
	}

	if v, _ := result.Data.Get("product_title_main"); v != "Red T-shirt" {
		t.Errorf("product_title_main = %v, want Red T-shirt", v)
	}
	if v, _ := result.Data.Get("url"); v != "https://detail.1688.com/offer/123.html" {
		t.Errorf("url = %v, want passthrough", v)
	}

	images, ok := result.Data.Get("product_images")
	if !ok {
		t.Fatal("product_images missing from output")
	}
	img := images.([]any)[0].(*Document)
	if v, _ := img.Get("url"); v != "https://img.example.com/1.jpg" {
		t.Errorf("image url = %v, want passthrough", v)
	}

	if result.Report.TotalLeaves == 0 {
		t.Error("report has no leaves")
	}
	if result.Report.TranslatedCount == 0 {
		t.Error("report has no translated leaves")
	}
	if result.Report.MissedCount != 0 {
		t.Errorf("MissedCount = %d, want 0", result.Report.MissedCount)
	}
	if got := result.Report.Statuses["product_title_main"]; got != StatusTranslated {
		t.Errorf("status[product_title_main] = %q, want translated", got)
	}
}

func TestTranslateProductDataDegradesToMissed(t *testing.T) {
	provider := newStubTranslator()
	provider.dropAll = true
	translator := NewTranslator(provider, WithMaxPasses(2))

	doc, _ := ParseDocument([]byte(sampleProductJSON))

	result, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateProductData() error = %v, provider failure must not be fatal", err)
	}

	if result.Report.MissedCount != result.Report.TotalLeaves {
		t.Errorf("MissedCount = %d, want all %d leaves", result.Report.MissedCount, result.Report.TotalLeaves)
	}
	// The output document is structurally identical with original text.
	if !result.Data.Equal(mustParse(t, sampleProductJSON)) {
		t.Error("output document should keep every original value")
	}
}

func TestTranslateProductDataNotNeededKeepsOriginal(t *testing.T) {
	provider := newStubTranslator()
	provider.translations = map[string]string{} // Nothing needs translation
	translator := NewTranslator(provider)

	doc := mustParse(t, `{"price": "29.9", "count": "100"}`)

	result, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateProductData() error = %v", err)
	}

	if !result.Data.Equal(doc) {
		t.Error("not_needed leaves must keep their original text")
	}
	if result.Report.NotNeededCount != 2 {
		t.Errorf("NotNeededCount = %d, want 2", result.Report.NotNeededCount)
	}
}

func TestTranslateProductDataKeepsTypedLeaves(t *testing.T) {
	provider := newStubTranslator()
	provider.translations = map[string]string{} // Nothing needs translation
	translator := NewTranslator(provider)

	doc := mustParse(t, `{"title": "红色T恤", "stock": 12, "active": true}`)

	result, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("TranslateProductData() error = %v", err)
	}

	// Numbers and booleans must round-trip with their types intact.
	if !result.Data.Equal(doc) {
		data, _ := json.Marshal(result.Data)
		t.Errorf("Data = %s, want the input unchanged", data)
	}
	if stock, _ := result.Data.Get("stock"); stock != json.Number("12") {
		t.Errorf("stock = %#v, want json.Number(\"12\")", stock)
	}
	if active, _ := result.Data.Get("active"); active != true {
		t.Errorf("active = %#v, want true", active)
	}
}

func TestTranslateProductDataSecondRunHitsCache(t *testing.T) {
	provider := newStubTranslator()
	cache := newMockCache()
	translator := NewTranslator(provider, WithCache(cache))

	doc := mustParse(t, `{"title": "红色T恤"}`)

	first, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	if first.Report.CachedCount != 0 {
		t.Errorf("first run CachedCount = %d, want 0", first.Report.CachedCount)
	}

	second, err := translator.TranslateProductData(context.Background(), doc)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if second.Report.CachedCount != 1 {
		t.Errorf("second run CachedCount = %d, want 1", second.Report.CachedCount)
	}
	if v, _ := second.Data.Get("title"); v != "Red T-shirt" {
		t.Errorf("cached title = %v, want Red T-shirt", v)
	}
	if provider.callCount != 1 {
		t.Errorf("provider callCount = %d, want 1 (second run fully cached)", provider.callCount)
	}
}

func TestTranslateProductDataValidation(t *testing.T) {
	translator := NewTranslator(newStubTranslator())
	if _, err := translator.TranslateProductData(context.Background(), nil); err == nil {
		t.Error("expected error for nil document")
	}

	noProvider := NewTranslator(nil)
	doc := mustParse(t, `{"a": "b"}`)
	if _, err := noProvider.TranslateProductData(context.Background(), doc); err == nil {
		t.Error("expected error for missing provider")
	}
}

func TestTranslatorDefaults(t *testing.T) {
	translator := NewTranslator(newStubTranslator())

	if translator.TargetLang() != DefaultTargetLang {
		t.Errorf("TargetLang() = %q, want %q", translator.TargetLang(), DefaultTargetLang)
	}
	if translator.BatchSize() != DefaultBatchSize {
		t.Errorf("BatchSize() = %d, want %d", translator.BatchSize(), DefaultBatchSize)
	}
	if translator.MaxPasses() != DefaultMaxPasses {
		t.Errorf("MaxPasses() = %d, want %d", translator.MaxPasses(), DefaultMaxPasses)
	}
}

func TestTranslatorOptions(t *testing.T) {
	translator := NewTranslator(newStubTranslator(),
		WithTargetLang("ja"),
		WithBatchSize(10),
		WithMaxPasses(5),
	)

	if translator.TargetLang() != "ja" {
		t.Errorf("TargetLang() = %q, want ja", translator.TargetLang())
	}
	if translator.BatchSize() != 10 {
		t.Errorf("BatchSize() = %d, want 10", translator.BatchSize())
	}
	if translator.MaxPasses() != 5 {
		t.Errorf("MaxPasses() = %d, want 5", translator.MaxPasses())
	}
}

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	return doc
}
