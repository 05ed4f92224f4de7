package models

import (
	"time"
)

// Analysis is the per-image result returned by the analyzer. Every key of the
// active profile is present in Fields after analysis, even when the upstream
// response could not be parsed. List-valued keys hold []string, the rest hold
// string.
type Analysis struct {
	Profile  string         `json:"profile"`
	Source   string         `json:"source"`
	Fields   map[string]any `json:"fields"`
	RawText  string         `json:"raw_text,omitempty"`
	Degraded bool           `json:"degraded"`
}

// UploadRecord is one accepted upload and its completed analysis. Identity
// for deduplication is the (Name, ByteLength) pair. Records are never
// mutated after creation.
type UploadRecord struct {
	Name       string    `json:"name"`
	ByteLength int       `json:"byte_length"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Analysis   Analysis  `json:"analysis"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Synthesis is the cross-image result: a short bullet summary of shared
// visual/psychological patterns plus a single image-generation prompt.
type Synthesis struct {
	Summary          []string `json:"analysis_summary"`
	GenerationPrompt string   `json:"generation_prompt"`
	Source           string   `json:"source"`
	RawText          string   `json:"raw_text,omitempty"`
	Degraded         bool     `json:"degraded"`
}

// GeneratedImage holds the produced thumbnail bytes together with the prompt
// that made them. Held only for display, never persisted.
type GeneratedImage struct {
	Prompt      string    `json:"prompt"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        string    `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
