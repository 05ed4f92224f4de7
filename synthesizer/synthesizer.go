package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apex/log"

	"thumbnail-pipeline/llm"
	"thumbnail-pipeline/metrics"
	"thumbnail-pipeline/models"
	"thumbnail-pipeline/parser"
)

const promptSystem = "You are an expert in design and marketing psychology. " +
	"Input is a JSON array of thumbnail analysis objects. " +
	"1) Summarize the common visual patterns and psychological strategies in 3-5 bullets. " +
	"2) Write one concise image-generation prompt to recreate that style. " +
	"Output ONLY valid JSON with keys analysis_summary (array of strings) and generation_prompt (string)."

// Truncation markers appended when an item or the whole payload is cut to
// respect upstream context limits.
const (
	itemEllipsis     = "…"
	payloadTruncated = "\n[truncated]"
)

// Options bound the synthesis payload. Upstream variants disagree on these,
// so they are configuration, not constants.
type Options struct {
	// Window is the number of most recent analyses considered.
	Window int
	// ItemCharLimit caps each serialized analysis.
	ItemCharLimit int
	// PayloadCharLimit caps the concatenated payload.
	PayloadCharLimit int
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = 5
	}
	if o.ItemCharLimit <= 0 {
		o.ItemCharLimit = 2000
	}
	if o.PayloadCharLimit <= 0 {
		o.PayloadCharLimit = 60000
	}
	return o
}

// Synthesizer combines the accumulated per-image analyses into one summary
// and one image-generation prompt.
type Synthesizer struct {
	client    llm.Client
	opts      Options
	maxTokens int
}

// New creates a synthesizer with the given payload bounds.
func New(client llm.Client, opts Options, maxTokens int) *Synthesizer {
	return &Synthesizer{
		client:    client,
		opts:      opts.withDefaults(),
		maxTokens: maxTokens,
	}
}

// BuildPayload serializes the last Window analyses, capping each item and the
// concatenated result. Exposed separately so the truncation behavior is
// testable without a client.
func (s *Synthesizer) BuildPayload(analyses []models.Analysis) string {
	subset := analyses
	if len(subset) > s.opts.Window {
		subset = subset[len(subset)-s.opts.Window:]
	}

	items := make([]string, 0, len(subset))
	for _, a := range subset {
		serialized, err := json.Marshal(a.Fields)
		if err != nil {
			continue
		}
		item := string(serialized)
		if len(item) > s.opts.ItemCharLimit {
			item = item[:s.opts.ItemCharLimit] + itemEllipsis
		}
		items = append(items, item)
	}

	payload := "[" + strings.Join(items, ",") + "]"
	if len(payload) > s.opts.PayloadCharLimit {
		payload = payload[:s.opts.PayloadCharLimit] + payloadTruncated
	}
	return payload
}

// Synthesize sends the bounded payload upstream. The response is never
// discarded: when it cannot be parsed as JSON, the raw text becomes both the
// summary and the generation prompt.
func (s *Synthesizer) Synthesize(ctx context.Context, analyses []models.Analysis) (models.Synthesis, error) {
	if len(analyses) == 0 {
		return models.Synthesis{}, models.ErrNoAnalyses
	}

	payload := s.BuildPayload(analyses)

	response, err := s.client.Complete(ctx, promptSystem, payload, s.maxTokens)
	if err != nil {
		return models.Synthesis{}, fmt.Errorf("synthesize over %d analyses: %w", len(analyses), err)
	}

	result := models.Synthesis{
		Source:  s.client.SourceName(),
		RawText: response,
	}

	var raw struct {
		AnalysisSummary  any    `json:"analysis_summary"`
		GenerationPrompt string `json:"generation_prompt"`
	}
	if err := parser.ParseObject(response, &raw); err != nil || strings.TrimSpace(raw.GenerationPrompt) == "" {
		log.Warn("synthesis response not parseable, falling back to raw text")
		metrics.ParseFallbackTotal.WithLabelValues("synthesize").Inc()
		text := strings.TrimSpace(response)
		result.Summary = []string{text}
		result.GenerationPrompt = text
		result.Degraded = true
		return result, nil
	}

	result.Summary = normalizeSummary(raw.AnalysisSummary)
	result.GenerationPrompt = strings.TrimSpace(raw.GenerationPrompt)
	return result, nil
}

// normalizeSummary wraps a bare string into a one-element slice so callers
// handle both upstream shapes uniformly.
func normalizeSummary(value any) []string {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				items = append(items, s)
			}
		}
		return items
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	default:
		return []string{}
	}
}
