package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"thumbnail-pipeline/config"
)

func chatServer(t *testing.T, content any, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want Bearer test-key", got)
		}
		if capture != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			*capture = body
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAnalyzeImageStructuredAttachment(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, `{"mood": "calm"}`, &captured)
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentStructured)
	out, err := client.AnalyzeImage(context.Background(), "system text", "user text", []byte{0xFF, 0xD8, 0xFF}, 250)
	if err != nil {
		t.Fatalf("AnalyzeImage() unexpected error: %v", err)
	}
	if out != `{"mood": "calm"}` {
		t.Errorf("response = %q", out)
	}

	if captured["max_tokens"].(float64) != 250 {
		t.Errorf("max_tokens = %v, want 250", captured["max_tokens"])
	}

	messages := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	user := messages[1].(map[string]any)
	parts, ok := user["content"].([]any)
	if !ok {
		t.Fatalf("structured attachment should send content parts, got %T", user["content"])
	}
	image := parts[0].(map[string]any)
	if image["type"] != "image_url" {
		t.Errorf("first part type = %v, want image_url", image["type"])
	}
	url := image["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("image url = %q, want a jpeg data URI", url)
	}
}

func TestAnalyzeImageInlineAttachment(t *testing.T) {
	var captured map[string]any
	srv := chatServer(t, `{}`, &captured)
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentInline)
	if _, err := client.AnalyzeImage(context.Background(), "system", "analyze this", []byte{0xFF, 0xD8, 0xFF}, 100); err != nil {
		t.Fatalf("AnalyzeImage() unexpected error: %v", err)
	}

	messages := captured["messages"].([]any)
	user := messages[1].(map[string]any)
	text, ok := user["content"].(string)
	if !ok {
		t.Fatalf("inline attachment should send string content, got %T", user["content"])
	}
	if !strings.Contains(text, "analyze this") {
		t.Errorf("inline content missing user text: %q", text)
	}
	if !strings.Contains(text, "<IMAGE_DATA>data:image/jpeg;base64,") {
		t.Errorf("inline content missing embedded data URI: %q", text)
	}
}

func TestChatStructuredContentRemarshaled(t *testing.T) {
	srv := chatServer(t, []any{map[string]any{"type": "text", "text": "hello"}}, nil)
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentStructured)
	out, err := client.Complete(context.Background(), "s", "u", 50)
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if !strings.Contains(out, `"text":"hello"`) {
		t.Errorf("structured content not re-marshaled: %q", out)
	}
}

func TestChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentStructured)
	if _, err := client.Complete(context.Background(), "s", "u", 50); err == nil {
		t.Error("Complete() expected error for non-200 status")
	}
}

func TestGenerateImageInlinePayload(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4E, 0x47}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["n"].(float64) != 1 {
			t.Errorf("n = %v, want 1", body["n"])
		}
		if body["size"] != "1024x576" {
			t.Errorf("size = %v, want 1024x576", body["size"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"b64_json": base64.StdEncoding.EncodeToString(payload)},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentStructured)
	data, err := client.GenerateImage(context.Background(), "a thumbnail", "1024x576")
	if err != nil {
		t.Fatalf("GenerateImage() unexpected error: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("image bytes = %v, want %v", data, payload)
	}
}

func TestGenerateImageURLPayload(t *testing.T) {
	payload := []byte("fetched-image-bytes")

	var imageURL string
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer fileSrv.Close()
	imageURL = fileSrv.URL + "/generated.png"

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": imageURL}},
		})
	}))
	defer apiSrv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", apiSrv.URL, config.AttachmentStructured)
	data, err := client.GenerateImage(context.Background(), "a thumbnail", "512x512")
	if err != nil {
		t.Fatalf("GenerateImage() unexpected error: %v", err)
	}
	if string(data) != string(payload) {
		t.Errorf("image bytes = %q, want %q", data, payload)
	}
}

func TestGenerateImageEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	client := NewClient("test-key", "gpt-4o", "gpt-image-1", srv.URL, config.AttachmentStructured)
	if _, err := client.GenerateImage(context.Background(), "prompt", "512x512"); err == nil {
		t.Error("GenerateImage() expected error for empty data")
	}
}
