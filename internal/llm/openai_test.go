package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIBackendInvoke(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Messages, 1)
		require.Equal(t, "text", req.Messages[0].Content[0].Type)
		require.Equal(t, "image_url", req.Messages[0].Content[1].Type)
		assert.True(t, strings.HasPrefix(req.Messages[0].Content[1].ImageURL.URL, "data:image/jpeg;base64,"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"{\"isTargetDetected\":true}"}}]}`)
	}))
	defer ts.Close()

	t.Setenv("OPENAI_BASE_URL", ts.URL)
	backend := NewOpenAIBackend("test-model")

	text, err := backend.Invoke(context.Background(), "analyze", []Image{
		{Data: []byte("fakejpeg"), MIMEType: "image/jpeg"},
	})
	require.NoError(t, err)
	assert.Contains(t, text, "isTargetDetected")
}

func TestOpenAIBackendError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limited"}}`)
	}))
	defer ts.Close()

	t.Setenv("OPENAI_BASE_URL", ts.URL)
	backend := NewOpenAIBackend("")

	_, err := backend.Invoke(context.Background(), "analyze", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestMIMETypeForPath(t *testing.T) {
	assert.Equal(t, "image/jpeg", MIMETypeForPath("a.jpg"))
	assert.Equal(t, "image/jpeg", MIMETypeForPath("a.JPEG"))
	assert.Equal(t, "image/png", MIMETypeForPath("a.PNG"))
	assert.Equal(t, "image/webp", MIMETypeForPath("a.webp"))
	assert.Equal(t, "image/jpeg", MIMETypeForPath("noext"))
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), "llama", "")
	assert.Error(t, err)
}
