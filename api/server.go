// Package api exposes the prompt manager over HTTP.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/promptvault/internal/config"
	"github.com/stellarlinkco/promptvault/internal/convert"
	"github.com/stellarlinkco/promptvault/internal/manager"
	"github.com/stellarlinkco/promptvault/internal/provider"
)

type Server struct {
	router    *gin.Engine
	manager   *manager.Manager
	providers *provider.Registry
	importer  *convert.Importer
	config    *config.Config
}

func NewServer(cfg *config.Config, mgr *manager.Manager, providers *provider.Registry, importer *convert.Importer) (*Server, error) {
	r := gin.New()
	s := &Server{
		router:    r,
		manager:   mgr,
		providers: providers,
		importer:  importer,
		config:    cfg,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler exposes the router for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
