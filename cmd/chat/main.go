package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"global-chat/ai"
	"global-chat/contract"
	"global-chat/grpc/client"
	"global-chat/internal"
	"global-chat/repositories"
	"global-chat/runtime"
	"global-chat/services"
	"global-chat/storage"

	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		originStorage storage.LocalStorage
		openBridge    runtime.BridgeOpener
	)
	if config.Standalone {
		db, err := storage.Open(config.StoragePath)
		if err != nil {
			return exitRuntime, fmt.Errorf("database opening failed: %w", err)
		}
		defer db.Close()
		originStorage = storage.NewDiskStorage(db, logger)

		bus := runtime.NewBus(logger, runtime.NewRegistry(), config.BufferSize, config.SinkTimeout)
		openBridge = func(context.Context) (contract.Bridge, error) {
			return bus.Open(config.BroadcastTopic), nil
		}
	} else {
		conn, err := grpc.NewClient("unix://"+config.HubSocket,
			grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return exitRuntime, fmt.Errorf("hub connection failed: %w", err)
		}
		defer conn.Close()
		originStorage = client.NewRemoteStorage(conn, config.StorageTimeout)
		openBridge = func(ctx context.Context) (contract.Bridge, error) {
			return client.DialBridge(ctx, logger, conn, config.BroadcastTopic, config.BufferSize)
		}
	}

	tab := newTab(ctx, logger, config, originStorage, openBridge)
	defer tab.Close()

	if _, err := tab.Restore(ctx); err != nil {
		logger.Warn("Unable to restore the previous session", "error", err)
	}

	newConsole(logger, tab, os.Stdout, true).run(ctx, stdin(ctx))
	return exitOK, nil
}

func newTab(ctx context.Context, logger *slog.Logger, config internal.Config, originStorage storage.LocalStorage, openBridge runtime.BridgeOpener) *runtime.Tab {
	// provider stays a nil interface without a credential
	var provider contract.Provider
	if config.AIEnabled() {
		gemini, err := ai.NewGeminiProvider(ctx, config.ProviderConfig(), logger)
		if err != nil {
			logger.Warn("Assistant provider unavailable", "error", err)
		} else {
			provider = gemini
		}
	} else {
		logger.Info("No API_KEY configured, the assistant is disabled")
	}
	newAI := func() services.IAISession {
		return services.NewAISession(logger, provider, config.AITemperature, config.AIStreamTimeout)
	}

	session := services.NewSessionManager(
		repositories.NewUserRepository(originStorage, logger),
		repositories.NewIdentityRepository(originStorage),
		logger,
	)
	return runtime.NewTab(logger, session, openBridge, newAI, time.Now)
}

// stdin stops feeding the console once ctx ends.
func stdin(ctx context.Context) io.Reader {
	r, w := io.Pipe()
	go func() {
		_, err := io.Copy(w, os.Stdin)
		_ = w.CloseWithError(err)
	}()
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return r
}
