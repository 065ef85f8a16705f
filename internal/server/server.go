package server

import (
	"context"
	"net/http"

	"github.com/bluehaven/rentals/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg *config.Config, handler http.Handler) *Server {
	if cfg.HttpServer.MaxBodyBytes > 0 {
		handler = http.MaxBytesHandler(handler, cfg.HttpServer.MaxBodyBytes)
	}

	readHeaderTimeout := cfg.HttpServer.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = cfg.HttpServer.Timeout
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.HttpServer.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HttpServer.Timeout,
			ReadHeaderTimeout: readHeaderTimeout,
			WriteTimeout:      cfg.HttpServer.Timeout,
			IdleTimeout:       cfg.HttpServer.IdleTimeout,
			MaxHeaderBytes:    cfg.HttpServer.MaxHeaderBytes,
		},
	}
}

func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
