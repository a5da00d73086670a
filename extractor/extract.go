package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/oversea-labs/oversea"
)

// EvaluateSchema applies a schema to an HTML page and returns the extracted
// document. Fields whose selectors match nothing yield their default value,
// or null; extraction never fails on missing elements, only on unparseable
// HTML.
func EvaluateSchema(html string, schema *Schema) (*oversea.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &oversea.ExtractionError{Message: "parse HTML", Cause: err}
	}

	base := doc.Selection
	if schema.BaseSelector != "" {
		if found := doc.Find(schema.BaseSelector); found.Length() > 0 {
			base = found.First()
		}
	}

	return evaluateFields(base, schema.Fields), nil
}

func evaluateFields(sel *goquery.Selection, fields []Field) *oversea.Document {
	out := oversea.NewDocument()
	for _, f := range fields {
		out.Set(f.Name, evaluateField(sel, f))
	}
	return out
}

func evaluateField(sel *goquery.Selection, f Field) any {
	target := sel
	if f.Selector != "" {
		target = sel.Find(f.Selector)
	}

	switch f.Type {
	case FieldNested:
		if target.Length() == 0 {
			return nil
		}
		return evaluateFields(target.First(), f.Fields)

	case FieldNestedList, FieldList:
		var items []any
		target.Each(func(_ int, s *goquery.Selection) {
			if len(f.Fields) > 0 {
				items = append(items, evaluateFields(s, f.Fields))
			} else {
				items = append(items, strings.TrimSpace(s.Text()))
			}
		})
		if items == nil {
			return nil
		}
		return items

	case FieldAttribute:
		if target.Length() > 0 {
			if value, ok := target.First().Attr(f.Attribute); ok {
				return value
			}
		}
		return fieldDefault(f)

	default: // FieldText and unspecified
		if target.Length() > 0 {
			return strings.TrimSpace(target.First().Text())
		}
		return fieldDefault(f)
	}
}

// fieldDefault returns the configured default, or nil when none is set.
// Null leaves are later skipped by the flattener, matching how absent page
// regions should behave downstream.
func fieldDefault(f Field) any {
	if f.Default != "" {
		return f.Default
	}
	return nil
}
