// Package httpapi is the HTTP boundary of the fishtank server: routing,
// request decoding, response shaping and the error-to-status mapping. All
// state changes are delegated to the services package.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fishtank/internal/logging"
	"github.com/dmitrijs2005/fishtank/internal/server/config"
	"github.com/dmitrijs2005/fishtank/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators of Server.
type Deps struct {
	Fish    *services.FishService
	Users   *services.UserService
	Reports *services.ReportService

	// Registry receives the HTTP collectors and is served on /metrics. Nil
	// disables both.
	Registry *prometheus.Registry
}

type Server struct {
	address         string
	baseURL         string
	maxUpload       int64
	shutdownTimeout time.Duration

	fish    *services.FishService
	users   *services.UserService
	reports *services.ReportService
	uploads *diskUploads
	logger  logging.Logger
	metrics *httpMetrics

	handler http.Handler
}

func NewServer(cfg *config.Config, l logging.Logger, d Deps) (*Server, error) {
	uploads, err := newDiskUploads(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:         cfg.ListenAddr,
		baseURL:         cfg.BaseURL,
		maxUpload:       cfg.MaxUploadBytes,
		shutdownTimeout: cfg.ShutdownTimeout,
		fish:            d.Fish,
		users:           d.Users,
		reports:         d.Reports,
		uploads:         uploads,
		logger:          l.With("module", "http_server"),
	}

	var reg prometheus.Registerer
	if d.Registry != nil {
		reg = d.Registry
	}
	s.metrics = newHTTPMetrics(reg)

	mux := s.routes()
	if d.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{Registry: d.Registry}))
	}
	s.handler = s.recoverPanics(s.accessLog(withCORS(mux)))
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /uploadfish", s.handleUpload)
	mux.HandleFunc("GET /api/fish", s.handleListFish)
	mux.HandleFunc("POST /api/vote", s.handleVote)
	mux.HandleFunc("POST /api/report", s.handleReport)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/google", s.handleGoogle)
	mux.HandleFunc("POST /auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", s.handleResetPassword)
	mux.Handle("GET /auth/me", s.requireUser(http.HandlerFunc(s.handleMe)))

	mux.Handle("POST /admin/fish/{id}/save", s.requireAdmin(http.HandlerFunc(s.handleAdminSave)))
	mux.Handle("POST /admin/fish/{id}/delete", s.requireAdmin(http.HandlerFunc(s.handleAdminDelete)))
	mux.Handle("POST /admin/fish/{id}/visibility", s.requireAdmin(http.HandlerFunc(s.handleAdminVisibility)))
	mux.Handle("POST /admin/clear-tank", s.requireAdmin(http.HandlerFunc(s.handleAdminClearTank)))
	mux.Handle("GET /admin/reports", s.requireAdmin(http.HandlerFunc(s.handleAdminReports)))

	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", s.uploads.fileServer()))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
