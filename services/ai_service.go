//go:generate go run go.uber.org/mock/mockgen -source=ai_service.go -destination=../mocks/mock_ai_session.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"global-chat/contract"
	"global-chat/errors"
)

const (
	notConfiguredFragment = "Error: Asistente no disponible, no hay una clave de API configurada."
	uninitializedFragment = "Error: Asistente no inicializado."
	apologyFragment       = "Lo siento, tengo problemas de conexión en este momento."
)

// SystemInstruction is the prompt every conversation of username starts with.
func SystemInstruction(username string) string {
	return fmt.Sprintf("Eres un asistente de IA personal, útil y amigable para el usuario %q.\n"+
		"Tu objetivo es ayudar con dudas generales, dar consejos o simplemente charlar.\n"+
		"Mantén tus respuestas breves y útiles.", username)
}

type IAISession interface {
	Initialize(ctx context.Context, username string)
	IsInitialized() bool
	Send(ctx context.Context, text string) <-chan string
}

// AISession is the tab's conversation with the hosted assistant.
// A nil provider means no credential is configured.
type AISession struct {
	log           *slog.Logger
	provider      contract.Provider
	temperature   float64
	streamTimeout time.Duration

	mu      sync.RWMutex
	owner   string
	session contract.ProviderSession
	initErr error
}

func NewAISession(log *slog.Logger, provider contract.Provider, temperature float64, streamTimeout time.Duration) *AISession {
	return &AISession{
		log:           log,
		provider:      provider,
		temperature:   temperature,
		streamTimeout: streamTimeout,
		initErr:       errors.ErrAIUninitialized,
	}
}

// Initialize opens a conversation seeded for username. Failures leave the
// session uninitialized and are only recorded.
func (a *AISession) Initialize(ctx context.Context, username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.owner = username
	a.session = nil

	if a.provider == nil {
		a.initErr = errors.ErrAINotConfigured
		a.log.Info("Assistant disabled, no API credential configured")
		return
	}
	session, err := a.provider.NewSession(ctx, contract.SessionConfig{
		SystemInstruction: SystemInstruction(username),
		Temperature:       a.temperature,
	})
	if err != nil {
		a.initErr = fmt.Errorf("%w: %v", errors.ErrAIUninitialized, err)
		a.log.Error("Error initializing assistant", "username", username, "error", err)
		return
	}
	a.session = session
	a.initErr = nil
}

func (a *AISession) IsInitialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session != nil
}

// Owner is the username the conversation was opened for.
func (a *AISession) Owner() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.owner
}

// Send streams the answer to text. The channel is closed when the answer ends.
// Failures never surface as errors: an uninitialized session yields one explanatory
// fragment and a provider failure yields one final apology.
// Cancelling ctx abandons the stream; nothing is delivered after that.
func (a *AISession) Send(ctx context.Context, text string) <-chan string {
	out := make(chan string)

	a.mu.RLock()
	session, initErr := a.session, a.initErr
	a.mu.RUnlock()

	go func() {
		defer close(out)

		emit := func(ctx context.Context, fragment string) bool {
			select {
			case out <- fragment:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if session == nil {
			if errors.Is(initErr, errors.ErrAINotConfigured) {
				emit(ctx, notConfiguredFragment)
				return
			}
			emit(ctx, uninitializedFragment)
			return
		}

		streamCtx, cancel := context.WithTimeout(ctx, a.streamTimeout)
		defer cancel()
		err := session.SendMessageStream(streamCtx, text, func(fragment string) {
			if fragment == "" {
				return
			}
			emit(streamCtx, fragment)
		})
		if err != nil {
			a.log.Error("Error sending message to assistant",
				"error", fmt.Errorf("%w: %v", errors.ErrAIProviderFailure, err))
			emit(ctx, apologyFragment)
		}
	}()
	return out
}
