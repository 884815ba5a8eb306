package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"global-chat/contract"
	"global-chat/grpc/client"
	"global-chat/grpc/server"
	"global-chat/repositories"
	"global-chat/runtime"
	"global-chat/services"
	"global-chat/storage"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

type BaseHubSuite struct {
	suite.Suite
	Config Config
	log    *slog.Logger
	dial   func(context.Context, string) (net.Conn, error)
	target string
	stop   func()
}

// SetupSuite loads the environment configuration and starts an in-process hub
// unless one is configured.
func (s *BaseHubSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	s.log = logs.GetLoggerFromLevel(slog.LevelWarn)

	if s.Config.HubSocket != "" {
		s.target = "unix://" + s.Config.HubSocket
		return
	}

	db, err := storage.Open("")
	s.Require().NoError(err)
	bus := runtime.NewBus(s.log, runtime.NewRegistry(), 16, 200*time.Millisecond)
	hub := grpc.NewServer()
	server.NewHubServer(s.log, bus, storage.NewDiskStorage(db, s.log), s.Config.Topic, 16).Register(hub)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = hub.Serve(lis) }()

	s.target = "passthrough:///bufnet"
	s.dial = func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }
	s.stop = func() {
		hub.Stop()
		_ = db.Close()
	}
}

func (s *BaseHubSuite) TearDownSuite() {
	if s.stop != nil {
		s.stop()
	}
}

// GrpcConn opens a connection to the hub with logging, colors, and JSON debugging
func (s *BaseHubSuite) GrpcConn(t *testing.T, name string) *grpc.ClientConn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		Multiline:       true,
		EmitUnpopulated: true,
	}

	options := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))

			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	}
	if s.dial != nil {
		options = append(options, grpc.WithContextDialer(s.dial))
	}

	conn, err := grpc.NewClient(s.target, options...)
	s.Require().NoError(err, "Failed to connect to hub at "+s.target)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// OpenTab wires a chat tab to the hub the way the terminal client does.
func (s *BaseHubSuite) OpenTab(name string) *runtime.Tab {
	conn := s.GrpcConn(s.T(), name)
	originStorage := client.NewRemoteStorage(conn, 5*time.Second)
	session := services.NewSessionManager(
		repositories.NewUserRepository(originStorage, s.log),
		repositories.NewIdentityRepository(originStorage),
		s.log,
	)
	opener := func(ctx context.Context) (contract.Bridge, error) {
		return client.DialBridge(ctx, s.log, conn, s.Config.Topic, 16)
	}
	newAI := func() services.IAISession {
		return services.NewAISession(s.log, nil, 0.7, time.Second)
	}
	tab := runtime.NewTab(s.log, session, opener, newAI, time.Now)
	s.T().Cleanup(func() { _ = tab.Close() })
	return tab
}
