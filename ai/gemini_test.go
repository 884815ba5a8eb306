package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"global-chat/contract"

	"github.com/stretchr/testify/require"
)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

// generateRequest is what the service receives on the wire.
type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction"`
	Contents          []content `json:"contents"`
	GenerationConfig  struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type recorder struct {
	mu       sync.Mutex
	requests []generateRequest
	paths    []string
	keys     []string
}

func (r *recorder) snapshot() ([]generateRequest, []string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests, r.paths, r.keys
}

func sseServer(rec *recorder, handle func(w http.ResponseWriter)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body generateRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, body)
		rec.paths = append(rec.paths, r.URL.Path+"?alt="+r.URL.Query().Get("alt"))
		rec.keys = append(rec.keys, r.Header.Get("x-goog-api-key"))
		rec.mu.Unlock()
		handle(w)
	}))
}

func writeChunk(w http.ResponseWriter, text string) {
	fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", text)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func newTestProvider(t *testing.T, url string) *GeminiProvider {
	provider, err := NewGeminiProvider(context.Background(), Config{
		APIKey:         "test-key",
		BaseURL:        url,
		Model:          "gemini-2.5-flash",
		ConnectTimeout: time.Second,
	}, slog.Default())
	require.NoError(t, err)
	return provider
}

func TestGeminiSession_Streams_Fragments(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}
	server := sseServer(rec, func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeChunk(w, "Hola")
		writeChunk(w, " mundo")
	})
	defer server.Close()

	session, err := newTestProvider(t, server.URL).NewSession(context.Background(), contract.SessionConfig{
		SystemInstruction: "sé breve",
		Temperature:       0.7,
	})
	req.NoError(err)

	// When a first message is sent
	var fragments []string
	err = session.SendMessageStream(context.Background(), "hola", func(f string) { fragments = append(fragments, f) })

	// Then fragments arrive in order
	req.NoError(err)
	req.Equal([]string{"Hola", " mundo"}, fragments)
	requests, paths, keys := rec.snapshot()
	req.Equal("/v1beta/models/gemini-2.5-flash:streamGenerateContent?alt=sse", paths[0])
	req.Equal("test-key", keys[0])
	req.Equal("sé breve", requests[0].SystemInstruction.Parts[0].Text)
	req.InDelta(0.7, requests[0].GenerationConfig.Temperature, 0.0001)
	req.Len(requests[0].Contents, 1)

	// And the next turn carries the conversation so far
	err = session.SendMessageStream(context.Background(), "¿y tú?", func(string) {})
	req.NoError(err)
	requests, _, _ = rec.snapshot()
	req.Len(requests[1].Contents, 3)
	req.Equal("model", requests[1].Contents[1].Role)
	req.Equal(4, session.(*GeminiSession).Turns())
}

func TestGeminiSession_API_Error(t *testing.T) {
	req := require.New(t)
	server := sseServer(&recorder{}, func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	})
	defer server.Close()

	session, err := newTestProvider(t, server.URL).NewSession(context.Background(), contract.SessionConfig{})
	req.NoError(err)

	var fragments []string
	err = session.SendMessageStream(context.Background(), "hola", func(f string) { fragments = append(fragments, f) })

	req.Error(err)
	req.Contains(err.Error(), "API key not valid")
	req.Empty(fragments)
	// A failed turn is not remembered
	req.Equal(0, session.(*GeminiSession).Turns())
}

func TestNewGeminiProvider_Requires_Key_And_Model(t *testing.T) {
	req := require.New(t)

	_, err := NewGeminiProvider(context.Background(), Config{Model: "gemini-2.5-flash"}, slog.Default())
	req.Error(err)

	_, err = NewGeminiProvider(context.Background(), Config{APIKey: "k"}, slog.Default())
	req.Error(err)
}
