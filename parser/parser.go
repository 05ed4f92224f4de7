package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// Upstream model output is untrusted text that is usually, but not always, a
// JSON object. ParseObject runs an ordered chain of recovery strategies and
// unmarshals the first candidate that parses; callers substitute their own
// defaults when the chain is exhausted.

// ErrUnparseable is returned when no recovery strategy produced valid JSON.
var ErrUnparseable = errors.New("response is not parseable as JSON")

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks.
func ExtractJSONFromMarkdown(response string) string {
	startMarker := "```"
	endMarker := "```"

	startIdx := strings.Index(response, startMarker)
	if startIdx == -1 {
		return response
	}

	// Find the end of the first code block
	endIdx := strings.Index(response[startIdx+len(startMarker):], endMarker)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(startMarker)

	content := response[startIdx+len(startMarker) : endIdx]

	// Remove the language identifier if present (e.g., "json")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 && (strings.TrimSpace(lines[0]) == "json" || strings.TrimSpace(lines[0]) == "") {
		content = strings.Join(lines[1:], "\n")
	}

	return strings.TrimSpace(content)
}

// ExtractObject returns the first top-level {...} substring of the response,
// or the response unchanged when no braces are found.
func ExtractObject(response string) string {
	startIdx := strings.Index(response, "{")
	if startIdx == -1 {
		return response
	}
	endIdx := strings.LastIndex(response, "}")
	if endIdx <= startIdx {
		return response
	}
	return strings.TrimSpace(response[startIdx : endIdx+1])
}

// RepairTrailingCommas strips commas that directly precede a closing brace or
// bracket, the most common defect in model-emitted JSON.
func RepairTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// ParseObject tries each recovery strategy in order and unmarshals the first
// candidate that is valid JSON into v. Returns ErrUnparseable when every
// strategy fails.
func ParseObject(response string, v any) error {
	cleaned := strings.TrimSpace(response)

	candidates := []string{
		cleaned,
		ExtractJSONFromMarkdown(cleaned),
		ExtractObject(cleaned),
	}
	candidates = append(candidates,
		RepairTrailingCommas(ExtractObject(ExtractJSONFromMarkdown(cleaned))))

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	return ErrUnparseable
}
