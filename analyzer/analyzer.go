package analyzer

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"thumbnail-pipeline/llm"
	"thumbnail-pipeline/metrics"
	"thumbnail-pipeline/models"
	"thumbnail-pipeline/parser"
)

const promptSystem = "You are an expert in visual communication and marketing psychology. " +
	"Given a thumbnail image, respond with a single valid JSON object and nothing else."

// Analyzer sends one image at a time to a vision-capable completion endpoint
// and returns a structured description with every profile key present.
type Analyzer struct {
	client    llm.Client
	profile   Profile
	maxTokens int
}

// New creates an analyzer for the named key-set profile.
func New(client llm.Client, profileName string, maxTokens int) *Analyzer {
	return &Analyzer{
		client:    client,
		profile:   LookupProfile(profileName),
		maxTokens: maxTokens,
	}
}

// Profile returns the active key-set profile.
func (a *Analyzer) Profile() Profile {
	return a.profile
}

// Analyze describes a single image. A transport failure is returned as an
// error; an unparseable response is not: the result then carries the default
// (empty) value for every expected key and Degraded is set.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, name string) (models.Analysis, error) {
	user := fmt.Sprintf("Analyze %q. Output JSON with exactly these %d keys: %s. Respond ONLY with JSON.",
		name, len(a.profile.Fields), a.profile.keySpec())

	response, err := a.client.AnalyzeImage(ctx, promptSystem, user, image, a.maxTokens)
	if err != nil {
		return models.Analysis{}, fmt.Errorf("analyze %q: %w", name, err)
	}

	result := models.Analysis{
		Profile: a.profile.Name,
		Source:  a.client.SourceName(),
		RawText: response,
	}

	var raw map[string]any
	if err := parser.ParseObject(response, &raw); err != nil {
		log.WithField("image", name).Warn("analysis response not parseable, using defaults")
		metrics.ParseFallbackTotal.WithLabelValues("analyze").Inc()
		result.Fields = a.profile.Defaults()
		result.Degraded = true
		return result, nil
	}

	result.Fields = a.normalize(raw)
	return result, nil
}

// normalize guarantees every profile key is present and correctly typed,
// defaulting missing or mistyped values to their empty container.
func (a *Analyzer) normalize(raw map[string]any) map[string]any {
	fields := make(map[string]any, len(a.profile.Fields))
	for _, f := range a.profile.Fields {
		value, ok := raw[f.Key]
		if !ok || value == nil {
			if f.Kind == KindList {
				fields[f.Key] = []string{}
			} else {
				fields[f.Key] = ""
			}
			continue
		}
		if f.Kind == KindList {
			fields[f.Key] = toStringList(value)
		} else {
			fields[f.Key] = toString(value)
		}
	}
	return fields
}

func toStringList(value any) []string {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
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

func toString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
