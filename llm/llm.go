package llm

import "context"

// Client abstracts the hosted model provider used by the pipeline.
// Implementations must be concurrency-safe if used across goroutines.
type Client interface {
	// AnalyzeImage sends one image plus a system/user instruction pair to a
	// vision-capable completion endpoint and returns the raw response text.
	AnalyzeImage(ctx context.Context, system, user string, image []byte, maxTokens int) (string, error)
	// Complete sends a text-only system/user instruction pair and returns
	// the raw response text.
	Complete(ctx context.Context, system, user string, maxTokens int) (string, error)
	// GenerateImage asks the image-generation endpoint for exactly one image
	// at the given size (e.g. "1024x576") and returns the decoded bytes.
	GenerateImage(ctx context.Context, prompt, size string) ([]byte, error)
	// SourceName returns a short provider label for saved results (e.g. "ChatGPT", "Stub").
	SourceName() string
}
