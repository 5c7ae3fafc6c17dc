package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/delving/itemnav/lib/common"
	"github.com/delving/itemnav/lib/nav"
	"github.com/delving/itemnav/lib/store/selector"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("web")

// maxBodyBytes bounds request bodies of the api
const maxBodyBytes = 1 << 20

// Server is the navigation service of the detail pages
type Server struct {
	config   common.ServerConfig
	selector *selector.Selector
	fetcher  nav.PageFetcher
	router   chi.Router
}

// NewServer creates the service. The store backend of every request is
// opened through sel, adjacent pages are loaded with fetcher.
func NewServer(config common.ServerConfig, sel *selector.Selector, fetcher nav.PageFetcher) *Server {
	if config.SessionCookieName == "" {
		config.SessionCookieName = DefaultSessionCookieName
	}
	s := &Server{
		config:   config,
		selector: sel,
		fetcher:  fetcher,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggerMiddleware)

	r.Get("/healthz", s.getHealth)
	r.Get("/metrics", s.getMetrics)

	r.Route("/api/nav", func(r chi.Router) {
		r.Post("/results", s.postResults)
		r.Delete("/results", s.deleteResults)
		r.Get("/controls", s.getControls)
	})

	r.Get("/nav/{direction}", s.getStep)

	return r
}

// Handler returns the http handler of the service
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured endpoint until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Endpoint,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		Logger.Infof("navigation service listening on %s", s.config.Endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	Logger.Infof("shutting down navigation service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	Logger.Infof("navigation service stopped")
	return nil
}
