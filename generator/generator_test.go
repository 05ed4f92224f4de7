package generator

import (
	"context"
	"errors"
	"testing"

	"thumbnail-pipeline/models"
)

type fakeClient struct {
	data       []byte
	err        error
	calls      int
	lastPrompt string
	lastSize   string
}

func (f *fakeClient) AnalyzeImage(_ context.Context, _, _ string, _ []byte, _ int) (string, error) {
	return "", f.err
}

func (f *fakeClient) Complete(_ context.Context, _, _ string, _ int) (string, error) {
	return "", f.err
}

func (f *fakeClient) GenerateImage(_ context.Context, prompt, size string) ([]byte, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSize = size
	return f.data, f.err
}

func (f *fakeClient) SourceName() string { return "Fake" }

// pngBytes sniffs as image/png.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestGenerateEmptyPrompt(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{data: pngBytes}
			g := New(client, "1024x576")

			_, err := g.Generate(context.Background(), tt.prompt)
			if !errors.Is(err, models.ErrEmptyPrompt) {
				t.Errorf("Generate() error = %v, want ErrEmptyPrompt", err)
			}
			if client.calls != 0 {
				t.Errorf("upstream called %d times for empty prompt, want 0", client.calls)
			}
		})
	}
}

func TestGenerateReturnsImage(t *testing.T) {
	client := &fakeClient{data: pngBytes}
	g := New(client, "1024x576")

	image, err := g.Generate(context.Background(), "  a bold thumbnail  ")
	if err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if len(image.Data) == 0 {
		t.Error("Generate() returned empty image bytes")
	}
	if image.Prompt != "a bold thumbnail" {
		t.Errorf("Prompt = %q, want trimmed prompt", image.Prompt)
	}
	if image.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", image.ContentType)
	}
	if client.lastSize != "1024x576" {
		t.Errorf("size = %q, want 1024x576", client.lastSize)
	}
}

func TestGenerateTransportError(t *testing.T) {
	wantErr := errors.New("upstream down")
	client := &fakeClient{err: wantErr}
	g := New(client, "1024x1024")

	_, err := g.Generate(context.Background(), "prompt")
	if !errors.Is(err, wantErr) {
		t.Errorf("Generate() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestGenerateEmptyPayload(t *testing.T) {
	client := &fakeClient{data: nil}
	g := New(client, "512x512")

	if _, err := g.Generate(context.Background(), "prompt"); err == nil {
		t.Error("Generate() expected error for empty payload")
	}
}

func TestGenerateDefaultSize(t *testing.T) {
	client := &fakeClient{data: pngBytes}
	g := New(client, "")

	if _, err := g.Generate(context.Background(), "prompt"); err != nil {
		t.Fatalf("Generate() unexpected error: %v", err)
	}
	if client.lastSize != "1024x576" {
		t.Errorf("default size = %q, want 1024x576", client.lastSize)
	}
}
