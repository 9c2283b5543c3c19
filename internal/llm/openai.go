package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o"
)

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint. The
// base URL can be overridden with OPENAI_BASE_URL to point at any compatible
// server.
type OpenAIBackend struct {
	httpClient *resty.Client
	model      string
}

// NewOpenAIBackend creates an OpenAI-compatible backend. It uses the
// OPENAI_API_KEY environment variable for authentication.
func NewOpenAIBackend(model string) *OpenAIBackend {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(os.Getenv("OPENAI_API_KEY")).
		SetHeader("Content-Type", "application/json")
	return &OpenAIBackend{httpClient: client, model: model}
}

// Name implements the Backend interface.
func (o *OpenAIBackend) Name() string { return "openai" }

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Invoke implements the Backend interface against the chat completions API.
// Images are inlined as base64 data URLs.
func (o *OpenAIBackend) Invoke(ctx context.Context, prompt string, images []Image) (string, error) {
	parts := []chatContentPart{{Type: "text", Text: prompt}}
	for _, img := range images {
		dataURL := fmt.Sprintf("data:%s;base64,%s", img.MIMEType, base64.StdEncoding.EncodeToString(img.Data))
		parts = append(parts, chatContentPart{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}})
	}

	body := chatRequest{
		Model:    o.model,
		Messages: []chatMessage{{Role: "user", Content: parts}},
	}

	var result chatResponse
	resp, err := o.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("chat completion failed: %s", result.Error.Message)
		}
		return "", fmt.Errorf("chat completion failed: status %d", resp.StatusCode())
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	text := result.Choices[0].Message.Content
	log.Debug().Str("model", o.model).Int("responseLen", len(text)).Msg("openai vision response")

	return text, nil
}
