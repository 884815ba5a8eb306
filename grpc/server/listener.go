package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
)

const DefaultGracePeriod = 5 * time.Second

// Listener serves a gRPC server as a supervised worker.
// Canceling the context stops the server gracefully, and forcibly once the
// grace period is over.
type Listener struct {
	log         *slog.Logger
	server      *grpc.Server
	listen      func() (net.Listener, error)
	gracePeriod time.Duration
	beforeStop  []func()
}

func NewListener(log *slog.Logger, server *grpc.Server, listen func() (net.Listener, error), gracePeriod time.Duration) *Listener {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &Listener{log: log, server: server, listen: listen, gracePeriod: gracePeriod}
}

// OnStop registers fn to run before the graceful stop, e.g. to end long-lived streams.
func (l *Listener) OnStop(fn func()) *Listener {
	l.beforeStop = append(l.beforeStop, fn)
	return l
}

func (l *Listener) Run(ctx context.Context) error {
	lis, err := l.listen()
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	served := make(chan error, 1)
	go func() {
		l.log.Info("Starting gRPC server", "address", lis.Addr().String())
		for name := range l.server.GetServiceInfo() {
			l.log.Debug("gRPC exposed service", "name", name)
		}
		served <- l.server.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		l.stop()
		<-served
		return nil
	case err := <-served:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("gRPC server error: %w", err)
	}
}

func (l *Listener) stop() {
	l.log.Info("Stopping gRPC server gracefully")
	for _, fn := range l.beforeStop {
		fn()
	}

	stopped := make(chan struct{})
	go func() {
		l.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(l.gracePeriod):
		l.log.Warn("Grace period over, closing remaining connections", "grace_period", l.gracePeriod)
		l.server.Stop()
		<-stopped
	}
}
