package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"thumbnail-pipeline/llm"
	"thumbnail-pipeline/models"
)

// Generator turns a synthesized prompt into thumbnail bytes via the hosted
// image-generation endpoint. One image per call, no retries.
type Generator struct {
	client llm.Client
	size   string
}

// New creates a generator producing images at the given size (e.g. "1024x576").
func New(client llm.Client, size string) *Generator {
	if size == "" {
		size = "1024x576"
	}
	return &Generator{client: client, size: size}
}

// Generate produces one image for the prompt. An empty prompt fails before
// any network call. Transport or decode errors are fatal for this action and
// surfaced to the caller.
func (g *Generator) Generate(ctx context.Context, prompt string) (models.GeneratedImage, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return models.GeneratedImage{}, models.ErrEmptyPrompt
	}

	data, err := g.client.GenerateImage(ctx, prompt, g.size)
	if err != nil {
		return models.GeneratedImage{}, fmt.Errorf("generate image: %w", err)
	}
	if len(data) == 0 {
		return models.GeneratedImage{}, fmt.Errorf("generate image: empty image payload")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}

	return models.GeneratedImage{
		Prompt:      prompt,
		Data:        data,
		ContentType: contentType,
		Size:        g.size,
		CreatedAt:   time.Now(),
	}, nil
}
