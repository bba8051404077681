// File: internal/llmutil/parser.go
package llmutil

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// Regexes use \x60 for backticks because Go raw strings cannot contain them.
	fencedObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")
	fencedArrayRegex  = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*(\\[.*\\])\\s*\x60\x60\x60")
)

// DecodeResponse parses a model response into T, tolerating the formatting
// noise free-form generation produces: markdown code fences and conversational
// text surrounding the actual JSON payload.
func DecodeResponse[T any](response string) (*T, error) {
	payload := ExtractJSON(response)

	var result T
	if err := json.UnmarshalFromString(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal model response: %w (extracted: %s)", err, truncate(payload, 400))
	}
	return &result, nil
}

// ExtractJSON strips markdown fencing and leading/trailing prose from a model
// response, returning the innermost JSON object or array it can locate. If no
// structure is found the trimmed input is returned unchanged and left for the
// decoder to reject.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	// The fence can sit anywhere in the response, not just at the start.
	if strings.Contains(response, "```") {
		if m := fencedArrayRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1]
		}
		if m := fencedObjectRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1]
		}
	}

	if strings.HasPrefix(response, "{") || strings.HasPrefix(response, "[") {
		return response
	}

	// Conversational wrapping: take the widest span of whichever structure
	// opens first, so an array of objects is not mistaken for one object.
	objStart, objEnd := span(response, '{', '}')
	arrStart, arrEnd := span(response, '[', ']')
	switch {
	case arrStart >= 0 && (objStart < 0 || arrStart < objStart):
		return response[arrStart:arrEnd]
	case objStart >= 0:
		return response[objStart:objEnd]
	}
	return response
}

func span(s string, open, close byte) (int, int) {
	first := strings.IndexByte(s, open)
	last := strings.LastIndexByte(s, close)
	if first == -1 || last <= first {
		return -1, -1
	}
	return first, last + 1
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
