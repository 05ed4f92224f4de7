package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Client is a deterministic, no-network provider stub intended for CI and
// local end-to-end runs. It returns schema-valid JSON so downstream parsing
// and session handling exercise the full pipeline.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

var palette = []string{"red", "orange", "yellow", "teal", "blue", "purple", "magenta", "black"}

var hookPool = []string{"urgency", "curiosity", "FOMO", "social proof", "contrast", "novelty"}

// onePixelPNG is a 1x1 PNG used as the generated thumbnail payload.
const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

// AnalyzeImage emits a marketing-profile analysis derived from the input
// hash so output is stable per image.
func (c *Client) AnalyzeImage(_ context.Context, _, user string, image []byte, _ int) (string, error) {
	sum := sha256.Sum256(append([]byte(user), image...))
	short := hex.EncodeToString(sum[:4])

	colors := []string{
		palette[int(sum[0])%len(palette)],
		palette[int(sum[1])%len(palette)],
		palette[int(sum[2])%len(palette)],
	}
	hooks := []string{
		hookPool[int(sum[3])%len(hookPool)],
		hookPool[int(sum[4])%len(hookPool)],
	}

	out := map[string]any{
		"dominant_colors": colors,
		"hooks":           hooks,
		"composition":     fmt.Sprintf("centered subject with bold framing (%s)", short),
		"text_style":      "large sans-serif overlay",
		"mood":            "energetic",
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Complete treats the user message as the serialized analysis array and
// synthesizes a summary plus a generation prompt from the union of the
// observed colors and hooks.
func (c *Client) Complete(_ context.Context, _, user string, _ int) (string, error) {
	var analyses []map[string]any
	colors := []string{}
	hooks := []string{}
	if err := json.Unmarshal([]byte(user), &analyses); err == nil {
		colors = collect(analyses, "dominant_colors")
		hooks = collect(analyses, "hooks")
	}

	summary := []string{
		fmt.Sprintf("Shared palette across %d thumbnails: %s", len(analyses), strings.Join(colors, ", ")),
		fmt.Sprintf("Recurring psychological hooks: %s", strings.Join(hooks, ", ")),
		"Consistent bold composition with large overlay text",
	}
	prompt := fmt.Sprintf("A 16:9 thumbnail using %s tones, triggering %s, centered subject with large sans-serif overlay text",
		strings.Join(colors, "/"), strings.Join(hooks, " and "))

	out := map[string]any{
		"analysis_summary":  summary,
		"generation_prompt": prompt,
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GenerateImage returns a fixed PNG payload.
func (c *Client) GenerateImage(_ context.Context, prompt, _ string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("empty prompt")
	}
	return base64.StdEncoding.DecodeString(onePixelPNG)
}

// collect gathers the deduplicated union of a list-valued key, preserving
// first-seen order.
func collect(analyses []map[string]any, key string) []string {
	var items []string
	seen := make(map[string]bool)
	for _, a := range analyses {
		list, ok := a[key].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			s, ok := item.(string)
			if !ok || s == "" || seen[s] {
				continue
			}
			seen[s] = true
			items = append(items, s)
		}
	}
	return items
}
