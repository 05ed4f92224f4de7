package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"thumbnail-pipeline/config"
	"thumbnail-pipeline/encoder"
)

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type ImageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type ImageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Client represents an OpenAI API client
type Client struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	attachment string
	client     *http.Client
}

// NewClient creates a new OpenAI client. attachment selects how images are
// embedded in chat requests: config.AttachmentInline puts the data URI inside
// the user text, config.AttachmentStructured sends an image_url content part.
func NewClient(apiKey, model, imageModel, baseURL, attachment string) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if attachment != config.AttachmentInline {
		attachment = config.AttachmentStructured
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		baseURL:    baseURL,
		attachment: attachment,
		client:     &http.Client{Timeout: 120 * time.Second},
	}
}

// SourceName identifies this provider in saved results
func (c *Client) SourceName() string {
	return "ChatGPT"
}

// userContent builds the user-message content for an image analysis request
// in the configured attachment shape.
func (c *Client) userContent(user string, image []byte) any {
	if c.attachment == config.AttachmentInline {
		return fmt.Sprintf("%s\n<IMAGE_DATA>%s</IMAGE_DATA>", user, encoder.DataURI(image))
	}
	return []any{
		ImageContent{
			Type:     "image_url",
			ImageURL: ImageURL{URL: encoder.DataURI(image)},
		},
		TextContent{Type: "text", Text: user},
	}
}

// AnalyzeImage sends one image with a system/user instruction pair to the
// chat completions endpoint and returns the raw response text.
func (c *Client) AnalyzeImage(ctx context.Context, system, user string, image []byte, maxTokens int) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: c.userContent(user, image)},
		},
		MaxTokens: maxTokens,
	}
	return c.chat(ctx, reqBody)
}

// Complete sends a text-only system/user instruction pair to the chat
// completions endpoint and returns the raw response text.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens: maxTokens,
	}
	return c.chat(ctx, reqBody)
}

func (c *Client) chat(ctx context.Context, reqBody ChatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	// Extract the text content from the response
	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}

	// If content is not a string, try to marshal it back to JSON
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}

	return string(contentJSON), nil
}

// GenerateImage asks the images endpoint for exactly one image and returns
// the decoded bytes. The response may carry an inline base64 payload or a
// fetchable URL; both are handled.
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) ([]byte, error) {
	reqBody := ImageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   size,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var imgResp ImageResponse
	if err := json.Unmarshal(body, &imgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(imgResp.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}

	item := imgResp.Data[0]
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload: %w", err)
		}
		return data, nil
	}
	if item.URL != "" {
		return c.fetchImage(ctx, item.URL)
	}

	return nil, fmt.Errorf("image response carries neither payload nor URL")
}

func (c *Client) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image fetch request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch error (status %d)", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image bytes: %w", err)
	}
	return data, nil
}
