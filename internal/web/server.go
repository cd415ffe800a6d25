// Package web provides the HTTP JSON API for visit-planner.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/evcraddock/visit-planner/internal/logging"
	"github.com/evcraddock/visit-planner/internal/metrics"
	"github.com/evcraddock/visit-planner/internal/planner"
)

// Options configures a Server.
type Options struct {
	Logger zerolog.Logger
	// Gatherer backs /metrics. The endpoint is not registered when nil.
	Gatherer prometheus.Gatherer
}

// Server is the API HTTP server.
type Server struct {
	planner *planner.Service
	log     zerolog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// NewServer creates a server backed by svc.
func NewServer(svc *planner.Service, opts Options) *Server {
	s := &Server{
		planner: svc,
		log:     opts.Logger,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	if opts.Gatherer != nil {
		s.mux.Handle("GET /metrics", metrics.Handler(opts.Gatherer))
	}

	s.mux.HandleFunc("GET /api/visits", s.apiListVisits)
	s.mux.HandleFunc("POST /api/visits", s.apiAddVisit)
	s.mux.HandleFunc("PUT /api/visits", s.apiReplaceVisits)
	s.mux.HandleFunc("GET /api/visits/{id}", s.apiGetVisit)
	s.mux.HandleFunc("PUT /api/visits/{id}", s.apiUpdateVisit)
	s.mux.HandleFunc("DELETE /api/visits/{id}", s.apiDeleteVisit)
	s.mux.HandleFunc("POST /api/visits/{id}/complete", s.apiCompleteVisit)
	s.mux.HandleFunc("POST /api/capacity", s.apiCheckCapacity)
	s.mux.HandleFunc("GET /api/days", s.apiListDays)
	s.mux.HandleFunc("GET /api/days/{date}", s.apiGetDay)
	s.mux.HandleFunc("POST /api/days/{date}/close", s.apiCloseDay)
	s.mux.HandleFunc("GET /api/cep/{code}", s.apiLookupAddress)

	s.handler = logging.RequestLogger(s.log)(s.mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("starting API server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
