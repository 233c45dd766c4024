package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/thisisjab/myn/engine"
)

type server struct {
	cfg    Config
	engine *engine.Engine
	logger *slog.Logger
}

// NewServer creates an HTTP front end for eng. Only the engine's check pipeline and keyword
// table are used; its sources and sink are left alone.
func NewServer(cfg Config, eng *engine.Engine, logger *slog.Logger) (*server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if eng == nil {
		return nil, errors.New("api server needs an engine")
	}

	return &server{
		cfg:    cfg,
		engine: eng,
		logger: logger,
	}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthcheck", s.healthCheckHandler)
	mux.HandleFunc("GET /api/keywords", s.keywordsHandler)
	mux.HandleFunc("POST /api/check", s.checkHandler)
	mux.HandleFunc("/", s.notFoundHandler)

	return s.recoverPanicMiddleware(s.requestLoggerMiddleware(s.corsMiddleware(mux)))
}

func (s *server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down server", "addr", s.cfg.Addr)
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("failed to shutdown server", "addr", s.cfg.Addr, "error", err)
		}
	}()

	var serverErr error
	if s.cfg.CertFile != "" {
		s.logger.Info("starting server with TLS", "addr", s.cfg.Addr)
		serverErr = srv.ListenAndServeTLS(s.cfg.CertFile, s.cfg.KeyFile)
	} else {
		s.logger.Info("starting server without TLS", "addr", s.cfg.Addr)
		serverErr = srv.ListenAndServe()
	}

	if serverErr != nil && !errors.Is(serverErr, http.ErrServerClosed) {
		return serverErr
	}

	return nil
}
