package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"

	"thumbnail-pipeline/analyzer"
	"thumbnail-pipeline/generator"
	"thumbnail-pipeline/metrics"
	"thumbnail-pipeline/models"
	"thumbnail-pipeline/synthesizer"
)

// Upload is one candidate image handed to the session by the caller.
type Upload struct {
	Name   string
	Data   []byte
	Width  int
	Height int
}

// BatchResult reports what a batch analysis did. Warnings are per-item and
// non-fatal: a failed item never aborts the remainder of the batch.
type BatchResult struct {
	Added    []models.UploadRecord `json:"added"`
	Skipped  int                   `json:"skipped"`
	Warnings []string              `json:"warnings,omitempty"`
}

// Service owns the ordered collection of upload records and the current
// synthesis and generated image for one UI session. Pipeline stages stay
// stateless; all mutable state lives here behind one mutex.
type Service struct {
	mu          sync.Mutex
	analyzer    *analyzer.Analyzer
	synthesizer *synthesizer.Synthesizer
	generator   *generator.Generator
	records     []models.UploadRecord
	synthesis   *models.Synthesis
	generated   *models.GeneratedImage
}

// NewService wires the three pipeline stages into one session-scoped service.
func NewService(a *analyzer.Analyzer, s *synthesizer.Synthesizer, g *generator.Generator) *Service {
	return &Service{
		analyzer:    a,
		synthesizer: s,
		generator:   g,
	}
}

// has reports whether an identical (name, byteLength) pair was already
// analyzed this session. Callers must hold mu.
func (s *Service) has(name string, byteLength int) bool {
	for _, r := range s.records {
		if r.Name == name && r.ByteLength == byteLength {
			return true
		}
	}
	return false
}

// AnalyzeBatch analyzes each new upload in order. Duplicates by
// (name, byteLength) are skipped without re-analysis; a same-named upload
// with a different length is treated as new. A transport failure on one item
// is recorded as a warning and processing continues with the next item.
func (s *Service) AnalyzeBatch(ctx context.Context, uploads []Upload) BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result BatchResult
	for _, u := range uploads {
		if s.has(u.Name, len(u.Data)) {
			metrics.UploadsDedupedTotal.Inc()
			result.Skipped++
			continue
		}

		start := time.Now()
		analysis, err := s.analyzer.Analyze(ctx, u.Data, u.Name)
		metrics.StageDurationSeconds.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StageTotal.WithLabelValues("analyze", "error").Inc()
			log.WithField("image", u.Name).WithError(err).Error("image analysis failed")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", u.Name, err))
			continue
		}
		metrics.StageTotal.WithLabelValues("analyze", "ok").Inc()

		record := models.UploadRecord{
			Name:       u.Name,
			ByteLength: len(u.Data),
			Width:      u.Width,
			Height:     u.Height,
			Analysis:   analysis,
			AnalyzedAt: time.Now(),
		}
		s.records = append(s.records, record)
		result.Added = append(result.Added, record)
	}
	return result
}

// Synthesize combines the accumulated analyses into one summary and
// generation prompt, and stores the result as the session's current
// synthesis.
func (s *Service) Synthesize(ctx context.Context) (models.Synthesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analyses := make([]models.Analysis, 0, len(s.records))
	for _, r := range s.records {
		analyses = append(analyses, r.Analysis)
	}

	start := time.Now()
	synthesis, err := s.synthesizer.Synthesize(ctx, analyses)
	metrics.StageDurationSeconds.WithLabelValues("synthesize").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageTotal.WithLabelValues("synthesize", "error").Inc()
		return models.Synthesis{}, err
	}
	metrics.StageTotal.WithLabelValues("synthesize", "ok").Inc()

	s.synthesis = &synthesis
	return synthesis, nil
}

// Generate produces a thumbnail from the stored generation prompt, or from
// promptOverride when non-empty, and stores the result as the session's
// current image.
func (s *Service) Generate(ctx context.Context, promptOverride string) (models.GeneratedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := promptOverride
	if prompt == "" && s.synthesis != nil {
		prompt = s.synthesis.GenerationPrompt
	}

	start := time.Now()
	image, err := s.generator.Generate(ctx, prompt)
	metrics.StageDurationSeconds.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageTotal.WithLabelValues("generate", "error").Inc()
		return models.GeneratedImage{}, err
	}
	metrics.StageTotal.WithLabelValues("generate", "ok").Inc()

	s.generated = &image
	return image, nil
}

// Records returns a copy of the session's ordered upload records.
func (s *Service) Records() []models.UploadRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UploadRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Synthesis returns the current synthesis, or nil when none was made yet.
func (s *Service) Synthesis() *models.Synthesis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synthesis
}

// Generated returns the current generated image, or nil.
func (s *Service) Generated() *models.GeneratedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated
}

// Reset discards all session state.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.synthesis = nil
	s.generated = nil
}
