// Package extractor fetches e-commerce product pages and extracts
// structured data from them using a declarative CSS-selector schema.
package extractor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldType determines how a field's value is read from its selection.
type FieldType string

const (
	// FieldText extracts the trimmed text content of the first match.
	FieldText FieldType = "text"
	// FieldAttribute extracts an attribute of the first match.
	FieldAttribute FieldType = "attribute"
	// FieldNested extracts a sub-document from the first match.
	FieldNested FieldType = "nested"
	// FieldNestedList extracts a sub-document per match.
	FieldNestedList FieldType = "nested_list"
	// FieldList extracts one entry per match; with sub-fields each entry is
	// a sub-document, otherwise the match's text.
	FieldList FieldType = "list"
)

// Field is one named extraction rule. Fields nest arbitrarily: a nested or
// list field carries sub-fields evaluated relative to its own matches.
type Field struct {
	Name      string    `json:"name" yaml:"name"`
	Selector  string    `json:"selector,omitempty" yaml:"selector,omitempty"`
	Type      FieldType `json:"type,omitempty" yaml:"type,omitempty"`
	Attribute string    `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Default   string    `json:"default,omitempty" yaml:"default,omitempty"`
	Fields    []Field   `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Schema is a complete extraction schema for one page type.
type Schema struct {
	Name         string  `json:"name" yaml:"name"`
	BaseSelector string  `json:"base_selector,omitempty" yaml:"base_selector,omitempty"`
	WaitFor      string  `json:"wait_for,omitempty" yaml:"wait_for,omitempty"`
	Fields       []Field `json:"fields" yaml:"fields"`
}

// ParseSchema decodes a schema from YAML (or JSON, which YAML subsumes).
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("parse schema: no fields defined")
	}
	return &s, nil
}

// LoadSchema reads a schema file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return ParseSchema(data)
}

// Selectors returns every CSS selector the schema uses, scoped under its
// ancestors. Useful for highlighting and debugging.
func (s *Schema) Selectors() []string {
	return collectSelectors(s.Fields, "")
}

func collectSelectors(fields []Field, parent string) []string {
	var selectors []string
	for _, f := range fields {
		scope := parent
		if f.Selector != "" {
			if parent != "" {
				scope = parent + " " + f.Selector
			} else {
				scope = f.Selector
			}
			selectors = append(selectors, scope)
		}
		if len(f.Fields) > 0 {
			selectors = append(selectors, collectSelectors(f.Fields, scope)...)
		}
	}
	return selectors
}
