package exporter

import (
	"context"
	"net/http"
	"time"

	"codeberg.org/mutker/bydmon/internal/errors"
	"codeberg.org/mutker/bydmon/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ErrInvalidListen = errors.ErrorCode("exporter_invalid_listen_address")
	ErrServeFailed   = errors.ErrorCode("exporter_serve_failed")
)

const shutdownTimeout = 5 * time.Second

// Server exposes /metrics for the given registry.
type Server struct {
	srv *http.Server
}

func NewServer(listen string, registry *prometheus.Registry) (*Server, error) {
	if listen == "" {
		return nil, errors.New().New(ErrInvalidListen)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Server{
		srv: &http.Server{
			Addr:              listen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", s.srv.Addr).Msg("Metrics endpoint listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return errors.New().Wrap(ErrServeFailed, err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New().Wrap(ErrServeFailed, err)
		}
		return nil
	}
}
