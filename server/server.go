package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lanzoufetch/downloader"
	"lanzoufetch/internal"
)

// NewRouter builds the gin engine serving the resolution API
func NewRouter(handler *Handler, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), Logger(), Cors())
	r.GET("/", handler.Resolve)
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResp{Code: http.StatusNotFound, Msg: "Not found"})
	})

	return r
}

// Server is the HTTP API process
type Server struct {
	httpServer *http.Server
}

// New wires a resolver and relay from config into a ready-to-run server
func New(config *internal.Config) *Server {
	resolver := downloader.NewResolver(config)
	relay := downloader.NewRelay(resolver.Client(), config)

	return &Server{
		httpServer: &http.Server{
			Addr:              config.ListenAddr(),
			Handler:           NewRouter(NewHandler(resolver, relay), config.EnableDebug),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	internal.LogInfo("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
