// Package mockserver is a deterministic stand-in for an LM music-metadata
// API. It implements the same surface (/health, /lm/inspire, /lm/format,
// /lm/understand) but fabricates metadata from a seeded generator instead of
// running a model, which makes it usable as a fixture for the conformance
// suite and for local dry runs.
package mockserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server hosts the stand-in LM API.
type Server struct {
	router    *gin.Engine
	addr      string
	jwtSecret string
}

// New creates a server for addr. When jwtSecret is non-empty every LM request
// must carry a valid HS256 bearer token, mirroring a deployment gated by an
// authenticated ingress.
func New(addr, jwtSecret string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(ginzap.Ginzap(zap.L().Named("mockserver"), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(zap.L().Named("mockserver"), true))

	s := &Server{
		router:    router,
		addr:      addr,
		jwtSecret: jwtSecret,
	}

	router.GET("/health", s.handleHealth)

	lm := router.Group("/lm")
	if jwtSecret != "" {
		lm.Use(s.requireBearer())
	}
	lm.POST("/inspire", s.handleInspire)
	lm.POST("/format", s.handleFormat)
	lm.POST("/understand", s.handleUnderstand)

	return s
}

// Router exposes the gin engine so tests can mount it on an httptest server.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Named("mockserver").Infow("listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
