// Package provider defines the AI provider interface and implementations.
package provider

import "github.com/oversea-labs/oversea"

// BatchTranslator is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type BatchTranslator = oversea.BatchTranslator

// BatchResult is an alias to the main package type.
type BatchResult = oversea.BatchResult

// TranslationItem is an alias to the main package type.
type TranslationItem = oversea.TranslationItem
