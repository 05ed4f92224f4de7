package handlers

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"

	"thumbnail-pipeline/analyzer"
	"thumbnail-pipeline/config"
	"thumbnail-pipeline/generator"
	"thumbnail-pipeline/llm"
	"thumbnail-pipeline/models"
	"thumbnail-pipeline/session"
	"thumbnail-pipeline/synthesizer"
)

// maxUploadBytes bounds one uploaded file.
const maxUploadBytes = 20 << 20

// ClientFactory builds a provider client for a given API key. Injected so
// tests can swap in a stub without a network.
type ClientFactory func(apiKey string) llm.Client

// Handlers represents the HTTP handlers. The session service is built
// lazily: from the configured key at startup, or from the first request that
// carries an X-API-Key header when no key was configured.
type Handlers struct {
	cfg     *config.Config
	factory ClientFactory

	mu  sync.Mutex
	svc *session.Service
}

// NewHandlers creates new HTTP handlers. When cfg carries an API key the
// session service is built immediately.
func NewHandlers(cfg *config.Config, factory ClientFactory) *Handlers {
	h := &Handlers{cfg: cfg, factory: factory}
	if cfg.OpenAIAPIKey != "" {
		h.svc = h.buildService(cfg.OpenAIAPIKey)
	}
	return h
}

func (h *Handlers) buildService(apiKey string) *session.Service {
	client := h.factory(apiKey)
	return session.NewService(
		analyzer.New(client, h.cfg.AnalysisProfile, h.cfg.AnalyzeMaxTokens),
		synthesizer.New(client, synthesizer.Options{
			Window:           h.cfg.SynthesisWindow,
			ItemCharLimit:    h.cfg.ItemCharLimit,
			PayloadCharLimit: h.cfg.PayloadCharLimit,
		}, h.cfg.SynthMaxTokens),
		generator.New(client, h.cfg.ImageSize),
	)
}

// service resolves the session service for a request, accepting an
// X-API-Key header as the interactive credential entry path. Returns
// models.ErrMissingCredential when no key is available; no upstream call is
// ever attempted in that case.
func (h *Handlers) service(c *gin.Context) (*session.Service, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.svc != nil {
		return h.svc, nil
	}
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		h.svc = h.buildService(key)
		return h.svc, nil
	}
	return nil, models.ErrMissingCredential
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "thumbnail-pipeline",
	})
}

// GetStatus reports the session's progress through the pipeline.
func (h *Handlers) GetStatus(c *gin.Context) {
	h.mu.Lock()
	svc := h.svc
	h.mu.Unlock()

	status := gin.H{
		"service":        "thumbnail-pipeline",
		"model":          h.cfg.OpenAIModel,
		"image_model":    h.cfg.ImageModel,
		"image_size":     h.cfg.ImageSize,
		"has_credential": svc != nil,
		"analyzed":       0,
		"synthesized":    false,
		"generated":      false,
	}
	if svc != nil {
		status["analyzed"] = len(svc.Records())
		status["synthesized"] = svc.Synthesis() != nil
		status["generated"] = svc.Generated() != nil
	}
	c.JSON(http.StatusOK, status)
}

// AnalyzeUploads accepts multipart image files under the "files" field,
// deduplicates against the session by (name, byte length), and analyzes each
// new upload in order.
func (h *Handlers) AnalyzeUploads(c *gin.Context) {
	svc, err := h.service(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	var uploads []session.Upload
	for _, fh := range files {
		if fh.Size > maxUploadBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file too large: " + fh.Filename})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload: " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload: " + fh.Filename})
			return
		}

		upload := session.Upload{Name: fh.Filename, Data: data}
		// Dimensions are informational; non-image payloads still flow to the
		// analyzer, which treats upstream handling as authoritative.
		if dims, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			upload.Width = dims.Width
			upload.Height = dims.Height
		}
		uploads = append(uploads, upload)
	}

	result := svc.AnalyzeBatch(c.Request.Context(), uploads)
	log.WithField("added", len(result.Added)).
		WithField("skipped", result.Skipped).
		Info("upload batch analyzed")
	c.JSON(http.StatusOK, result)
}

// GetAnalyses returns the session's ordered upload records.
func (h *Handlers) GetAnalyses(c *gin.Context) {
	svc, err := h.service(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": svc.Records()})
}

// Synthesize combines the accumulated analyses into a summary and a single
// image-generation prompt.
func (h *Handlers) Synthesize(c *gin.Context) {
	svc, err := h.service(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	synthesis, err := svc.Synthesize(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, synthesis)
}

// GenerateRequest optionally overrides the stored generation prompt.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// Generate produces a thumbnail from the current generation prompt (or the
// request override) and stores it as the session's current image.
func (h *Handlers) Generate(c *gin.Context) {
	svc, err := h.service(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	var req GenerateRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	generated, err := svc.Generate(c.Request.Context(), req.Prompt)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, generated)
}

// GetThumbnail serves the generated image bytes.
func (h *Handlers) GetThumbnail(c *gin.Context) {
	svc, err := h.service(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	generated := svc.Generated()
	if generated == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no thumbnail generated yet"})
		return
	}
	c.Data(http.StatusOK, generated.ContentType, generated.Data)
}

// ResetSession discards all accumulated session state.
func (h *Handlers) ResetSession(c *gin.Context) {
	h.mu.Lock()
	svc := h.svc
	h.mu.Unlock()
	if svc != nil {
		svc.Reset()
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// abortWithError maps pipeline errors to HTTP statuses. Upstream failures
// are scoped to the single action; nothing here is process-fatal.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrMissingCredential):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "API key required: set OPENAI_API_KEY or pass X-API-Key"})
	case errors.Is(err, models.ErrEmptyPrompt), errors.Is(err, models.ErrNoAnalyses):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
