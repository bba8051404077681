// File: internal/classifier/schema.go
package classifier

import (
	"google.golang.org/genai"

	"github.com/xkilldash9x/meetpilot/api/schemas"
)

// stateSchema constrains the page-state call to the closed state set, so the
// model cannot hallucinate a state name the navigation logic does not know.
func stateSchema() *genai.Schema {
	states := schemas.AllPageStates()
	enum := make([]string, len(states))
	for i, s := range states {
		enum[i] = string(s)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"state": {
				Type:        genai.TypeString,
				Enum:        enum,
				Description: "The classified page state.",
			},
			"logged_in": {
				Type:        genai.TypeBoolean,
				Description: "Whether the web page shows an authenticated Google session.",
			},
			"alone_in_the_call": {
				Type:        genai.TypeBoolean,
				Description: "True only on an active call screen with a single participant.",
			},
		},
		Required: []string{"state", "logged_in", "alone_in_the_call"},
	}
}

// elementListSchema constrains schema-mode element detection to a flat array
// of labelled boxes in the 0-1000 model space.
func elementListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"label": {
					Type:        genai.TypeString,
					Description: "Control name, lowercase words joined by underscores.",
				},
				"box_2d": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeInteger},
					Description: "[y_min, x_min, y_max, x_max] in 0-1000 coordinates.",
				},
			},
			Required: []string{"label", "box_2d"},
		},
	}
}

// safetySettings relaxes blocking to high-severity only. Screenshots of video
// tiles occasionally trip the default thresholds and abort the call.
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockOnlyHigh,
		})
	}
	return settings
}
