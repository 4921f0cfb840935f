// Package report carries the structured diagnostics the resampling core
// returns instead of writing user-facing output itself. The caller decides
// how to render them; WriteProduct serializes the product.json shape the
// pipeline UI consumes.
package report

import (
	"encoding/json"
	"io"
)

// Kind classifies a diagnostic message.
type Kind string

const (
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindSuccess Kind = "success"
)

// Diagnostic is one message intended for end-user display.
type Diagnostic struct {
	Kind    Kind   `json:"type"`
	Message string `json:"msg"`
}

// Info builds an info diagnostic.
func Info(msg string) Diagnostic { return Diagnostic{Kind: KindInfo, Message: msg} }

// Warning builds a warning diagnostic.
func Warning(msg string) Diagnostic { return Diagnostic{Kind: KindWarning, Message: msg} }

// Success builds a success diagnostic.
func Success(msg string) Diagnostic { return Diagnostic{Kind: KindSuccess, Message: msg} }

type product struct {
	Brainlife []Diagnostic `json:"brainlife"`
}

// WriteProduct writes the collected diagnostics as product.json. A nil or
// empty slice produces an empty message list, not null.
func WriteProduct(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(product{Brainlife: diags})
}
