package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"os/signal"
	"syscall"

	"global-chat/grpc/server"
	"global-chat/internal"
	"global-chat/runtime"
	"global-chat/runtime/workers"
	"global-chat/storage"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hub terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run owns every resource so deferred cleanups happen before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Origin storage
	db, err := storage.Open(config.StoragePath)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	originStorage := storage.NewDiskStorage(db, logger)

	// 3. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.DebugAddr != "" {
		internal.StartDebugServer(ctx, logger, config.DebugAddr, originStorage, internal.DefaultMapper)
	}

	// 4. Broadcast & gRPC
	bus := runtime.NewBus(logger, runtime.NewRegistry(), config.BufferSize, config.SinkTimeout)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	hub := server.NewHubServer(logger, bus, originStorage, config.BroadcastTopic, config.BufferSize)
	hub.Register(s)

	listen := func() (net.Listener, error) {
		if err := os.Remove(config.HubSocket); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		return net.Listen("unix", config.HubSocket)
	}

	// 5. Supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(server.NewListener(logger, s, listen, config.ShutdownGrace).OnStop(hub.Close))

	logger.Info("Origin hub ready", "socket", config.HubSocket, "topic", config.BroadcastTopic)
	sup.Run(ctx)

	_ = os.Remove(config.HubSocket)
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}
