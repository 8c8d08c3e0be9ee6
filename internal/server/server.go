package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"storefront/internal/logger"

	"github.com/labstack/echo/v4"
)

type Server struct {
	http *http.Server
	logg *logger.Logger
}

func New(port string, e *echo.Echo, logg *logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           e,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logg: logg,
	}
}

// ctxがキャンセルされたらgraceful shutdownする
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logg.Info(s.logg.WithField(ctx, "addr", s.http.Addr), "server.start")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logg.Info(context.Background(), "server.shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
