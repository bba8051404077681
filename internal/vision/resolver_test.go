// File: internal/vision/resolver_test.go
package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

func elems(labels ...string) []schemas.ControlElement {
	out := make([]schemas.ControlElement, len(labels))
	for i, l := range labels {
		out[i] = schemas.ControlElement{Label: l, Box: schemas.Box{0, 0, 10, 10}}
	}
	return out
}

func TestFind_ExactMatchWinsWithFullConfidence(t *testing.T) {
	r := NewResolver(elems("mute_audio", "leave_call_button", "raise_hand"))

	m := r.Find("leave_call_button")
	require.True(t, m.Found())
	assert.Equal(t, "leave_call_button", m.Element.Label)
	assert.Equal(t, 100.0, m.Confidence)
}

func TestFind_AliasMatchesAtFullConfidence(t *testing.T) {
	r := NewResolver(elems("meet_leave_call_button"))

	m := r.Find("meet_call_control_end_call_button", "meet_leave_call_button")
	require.True(t, m.Found())
	assert.Equal(t, "meet_leave_call_button", m.Element.Label)
	assert.Equal(t, 100.0, m.Confidence)
}

func TestFind_FallbackConfidenceIsStrictlyBetweenZeroAndHundred(t *testing.T) {
	r := NewResolver(elems("people_admit_all_row"))

	m := r.Find("people_admit_button")
	require.True(t, m.Found())
	assert.Greater(t, m.Confidence, 0.0)
	assert.Less(t, m.Confidence, 100.0)
	// len("people_admit")/len("people_admit_button")*100 = 63.16
	assert.InDelta(t, 63.16, m.Confidence, 0.001)
}

func TestFind_LongestFallbackWins(t *testing.T) {
	r := NewResolver(elems("x_a_b_button", "x_a_b_c_button"))

	// Fallbacks for a_b_c_d are tried longest first, so a_b_c must match
	// before a_b does.
	m := r.Find("a_b_c_d")
	require.True(t, m.Found())
	assert.Equal(t, "x_a_b_c_button", m.Element.Label)
}

func TestFind_NoMatchReturnsZero(t *testing.T) {
	r := NewResolver(elems("mute_audio", "mute_video"))

	m := r.Find("admit_all_button")
	assert.False(t, m.Found())
	assert.Nil(t, m.Element)
	assert.Equal(t, 0.0, m.Confidence)
}

func TestFallbackLabels_NeverSingleWord(t *testing.T) {
	cases := map[string][]string{
		"a_b_c_d":    {"a_b_c", "a_b"},
		"a_b":        nil,
		"single":     nil,
		"join_now_x": {"join_now"},
	}
	for base, want := range cases {
		got := fallbackLabels(base)
		assert.Equal(t, want, got, "base %q", base)
		for _, fb := range got {
			assert.GreaterOrEqual(t, len(splitWords(fb)), 2)
		}
	}
}

func splitWords(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '_' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

func TestFind_EmptyElementList(t *testing.T) {
	r := NewResolver(nil)
	m := r.Find("anything_at_all")
	assert.False(t, m.Found())
	assert.Equal(t, 0.0, m.Confidence)
}
