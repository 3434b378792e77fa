package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/ogurasousui/pin-roster/internal/adapters/grpc/handler"
	"github.com/ogurasousui/pin-roster/internal/core/auth"
	"github.com/ogurasousui/pin-roster/internal/core/employee"
	"github.com/ogurasousui/pin-roster/internal/core/ledger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const loginRequiredMessage = "login required"

// Services はサーバーに登録するユースケースの集合です。
type Services struct {
	Roster   employee.UseCase
	Ledger   ledger.UseCase
	Reporter handler.Reporter
	Auth     auth.UseCase
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	logger     *slog.Logger
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, svcs Services, logger *slog.Logger, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(
		LoggingInterceptor(logger),
		LoginRequiredInterceptor(svcs.Auth, handler.RosterServiceName, handler.LedgerServiceName),
	)}, opts...)
	srv := grpc.NewServer(opts...)

	handler.RegisterRosterServiceServer(srv, handler.NewRosterGrpcHandler(svcs.Roster))
	handler.RegisterLedgerServiceServer(srv, handler.NewLedgerGrpcHandler(svcs.Ledger, svcs.Reporter))
	handler.RegisterAuthServiceServer(srv, handler.NewAuthGrpcHandler(svcs.Auth))

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.grpcServer.GracefulStop()
	}()

	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// LoggingInterceptor はメソッド名、ステータスコード、処理時間を記録します。
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "gRPC call",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// SessionReader はログイン中の利用者を参照します。
type SessionReader interface {
	CurrentUser() (auth.Credential, bool)
}

// LoginRequiredInterceptor は services に属するメソッドを、ログイン中の利用者がいる場合にのみ通します。
// それ以外のメソッドは常に通します。
func LoginRequiredInterceptor(sessions SessionReader, services ...string) grpc.UnaryServerInterceptor {
	guarded := make(map[string]struct{}, len(services))
	for _, name := range services {
		guarded[name] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if _, ok := guarded[serviceOf(info.FullMethod)]; ok {
			if sessions == nil {
				return nil, status.Error(codes.Unauthenticated, loginRequiredMessage)
			}
			if _, ok := sessions.CurrentUser(); !ok {
				return nil, status.Error(codes.Unauthenticated, loginRequiredMessage)
			}
		}
		return next(ctx, req)
	}
}

func serviceOf(fullMethod string) string {
	trimmed := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
