// Package llm abstracts the vision model backends behind a single interface
// so the rest of the pipeline never cares which provider answers.
package llm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Image is one input image with its MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Backend is a vision-capable model endpoint.
type Backend interface {
	// Invoke sends the prompt and images and returns the raw text response.
	Invoke(ctx context.Context, prompt string, images []Image) (string, error)
	// Name identifies the backend in logs.
	Name() string
}

// New builds the backend for the given name. An empty name selects Gemini.
// The model overrides the backend default when non-empty.
func New(ctx context.Context, backend, model string) (Backend, error) {
	switch backend {
	case "", "gemini":
		return NewGeminiBackend(ctx, model)
	case "openai":
		return NewOpenAIBackend(model), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected gemini or openai)", backend)
	}
}

// MIMETypeForPath guesses an image MIME type from the file extension,
// defaulting to JPEG.
func MIMETypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}
