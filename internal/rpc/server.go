package rpc

import (
	"context"
	"fmt"
	"net"

	"github.com/charmbracelet/log"
	"github.com/vic3r/spotify-search/internal/shared"
	"google.golang.org/grpc"
)

// Server hosts the gRPC front-end.
type Server struct {
	addr       string
	grpcServer *grpc.Server
	logger     *log.Logger
}

// NewServer creates a gRPC server on addr with the catalog service registered.
func NewServer(addr string, service CatalogSearchServer, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	grpcServer := grpc.NewServer()
	RegisterCatalogSearchServer(grpcServer, service)

	return &Server{
		addr:       addr,
		grpcServer: grpcServer,
		logger:     shared.WithLogger(logger, "component", "grpc"),
	}
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen on %s: %w", s.addr, err)
	}

	errs := make(chan error, 1)
	go func() {
		if err := s.grpcServer.Serve(listener); err != nil {
			errs <- err
		}
	}()

	s.logger.Info("listening", "addr", s.addr)

	select {
	case err := <-errs:
		return fmt.Errorf("grpc server error: %w", err)
	case <-ctx.Done():
	}

	s.grpcServer.GracefulStop()
	return nil
}
