// Package ai talks to the hosted text-generation service behind the assistant.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"global-chat/contract"

	"google.golang.org/genai"
)

// Config holds the settings of the Gemini client.
type Config struct {
	APIKey string
	// BaseURL overrides the service endpoint, empty keeps the SDK default.
	BaseURL string
	Model   string
	// ConnectTimeout bounds the time to get response headers, not the whole stream.
	ConnectTimeout time.Duration
}

// GeminiProvider opens chat sessions on the Gemini API.
// It is safe for concurrent use.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    *slog.Logger
}

var _ contract.Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, config Config, log *slog.Logger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("missing api key")
	}
	if config.Model == "" {
		return nil, errors.New("missing model")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.ConnectTimeout > 0 {
		transport.ResponseHeaderTimeout = config.ConnectTimeout
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      config.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Transport: transport},
		HTTPOptions: genai.HTTPOptions{BaseURL: config.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: config.Model, log: log}, nil
}

// NewSession only prepares the conversation; nothing is sent until the first message.
func (p *GeminiProvider) NewSession(ctx context.Context, config contract.SessionConfig) (contract.ProviderSession, error) {
	generation := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(config.Temperature)),
	}
	if config.SystemInstruction != "" {
		generation.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: config.SystemInstruction}}}
	}

	chat, err := p.client.Chats.Create(ctx, p.model, generation, nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &GeminiSession{chat: chat, log: p.log}, nil
}

// GeminiSession is one multi-turn conversation. The SDK chat keeps the history
// and only records a turn once its answer completed.
type GeminiSession struct {
	log *slog.Logger

	mu   sync.Mutex
	chat *genai.Chat
}

func (s *GeminiSession) SendMessageStream(ctx context.Context, message string, onFragment func(fragment string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for chunk, err := range s.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
		if err != nil {
			return fmt.Errorf("stream answer: %w", err)
		}
		if text := chunk.Text(); text != "" {
			onFragment(text)
		}
	}
	return nil
}

// Turns returns how many messages the conversation holds.
func (s *GeminiSession) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chat.History(false))
}
