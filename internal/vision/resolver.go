// File: internal/vision/resolver.go
package vision

import (
	"math"
	"strings"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

// Resolver finds the best element for a requested logical control within the
// element list of a single classification. Vision-model labels are not
// contractually stable, so exact matching is backed by a graduated fuzzy
// fallback; callers pick a confidence threshold appropriate to the risk of
// the action (high for destructive clicks, lower for discovery).
type Resolver struct {
	elements []schemas.ControlElement
}

// NewResolver builds a Resolver over one classification's elements. The slice
// is not copied; classifications are immutable once returned.
func NewResolver(elements []schemas.ControlElement) *Resolver {
	return &Resolver{elements: elements}
}

// Find resolves a control by its base label and optional aliases.
//
// Search order:
//  1. Exact match against the base label or any alias: confidence 100.0.
//  2. Substring match against multi-word prefixes of the base label, longest
//     first: confidence len(prefix)/len(base)*100, rounded to 2 decimals.
//  3. Nothing matched: nil element, confidence 0.0.
func (r *Resolver) Find(base string, aliases ...string) schemas.MatchResult {
	wanted := append([]string{base}, aliases...)
	for i := range r.elements {
		for _, label := range wanted {
			if r.elements[i].Label == label {
				return schemas.MatchResult{Element: &r.elements[i], Confidence: 100.0}
			}
		}
	}

	for _, fb := range fallbackLabels(base) {
		for i := range r.elements {
			if strings.Contains(r.elements[i].Label, fb) {
				conf := round2(float64(len(fb)) / float64(len(base)) * 100.0)
				return schemas.MatchResult{Element: &r.elements[i], Confidence: conf}
			}
		}
	}

	return schemas.MatchResult{}
}

// fallbackLabels derives progressively shorter search terms from a base
// label by taking every underscore-separated prefix of at least two words,
// longest first: "a_b_c_d" yields ["a_b_c", "a_b"]. Single-word prefixes are
// never produced; they are too generic and cause false positives.
func fallbackLabels(base string) []string {
	parts := strings.Split(base, "_")
	var out []string
	for n := len(parts) - 1; n >= 2; n-- {
		out = append(out, strings.Join(parts[:n], "_"))
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
