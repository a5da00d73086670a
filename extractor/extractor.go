package extractor

import (
	"context"

	"github.com/oversea-labs/oversea"
	"github.com/sirupsen/logrus"
)

// Extractor ties together a fetcher, a schema and post-processing into a
// single page-to-document operation.
type Extractor struct {
	fetcher Fetcher
	schema  *Schema
	post    map[string]PostProcessor
	final   func(*oversea.Document)
	logger  logrus.FieldLogger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPostProcessors sets per-field post-processors applied after schema
// evaluation.
func WithPostProcessors(post map[string]PostProcessor) Option {
	return func(e *Extractor) {
		e.post = post
	}
}

// WithFinalizer sets a document-level pass run after all field
// post-processors.
func WithFinalizer(final func(*oversea.Document)) Option {
	return func(e *Extractor) {
		e.final = final
	}
}

// WithExtractorLogger sets the logger.
func WithExtractorLogger(logger logrus.FieldLogger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an extractor for the given fetcher and schema.
func New(fetcher Fetcher, schema *Schema, opts ...Option) *Extractor {
	e := &Extractor{
		fetcher: fetcher,
		schema:  schema,
		logger:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewAlibaba1688 creates an extractor preconfigured for 1688.com product
// pages. When fetcher is a ChromedpFetcher with no wait selector set, the
// schema's wait selector is applied.
func NewAlibaba1688(fetcher Fetcher, opts ...Option) *Extractor {
	schema := Alibaba1688Schema()
	if cf, ok := fetcher.(*ChromedpFetcher); ok && cf.WaitSelector == "" {
		cf.WaitSelector = schema.WaitFor
	}
	base := []Option{
		WithPostProcessors(Alibaba1688PostProcessors()),
		WithFinalizer(MergeTitle),
	}
	return New(fetcher, schema, append(base, opts...)...)
}

// Extract fetches a page and returns its extracted document. The document
// always carries the source URL under the "url" key. Individual fields that
// are absent from the page come back null rather than failing the whole
// extraction.
func (e *Extractor) Extract(ctx context.Context, url string) (*oversea.Document, error) {
	e.logger.WithField("url", url).Info("extracting product page")

	html, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := e.ExtractHTML(html)
	if err != nil {
		return nil, err
	}
	doc.Set("url", url)

	e.logger.WithFields(logrus.Fields{"url": url, "fields": doc.Len()}).Info("extraction complete")
	return doc, nil
}

// ExtractHTML runs schema evaluation and post-processing on already-fetched
// HTML.
func (e *Extractor) ExtractHTML(html string) (*oversea.Document, error) {
	doc, err := EvaluateSchema(html, e.schema)
	if err != nil {
		return nil, err
	}

	for name, process := range e.post {
		if raw, ok := doc.Get(name); ok {
			doc.Set(name, process(raw))
		}
	}
	if e.final != nil {
		e.final(doc)
	}
	return doc, nil
}
