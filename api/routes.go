package api

import (
	"errors"
	"os"
	"strings"
)

func (s *Server) registerRoutes() error {
	if s == nil || s.router == nil {
		return nil
	}

	api := s.router.Group("/api")
	apiKey := strings.TrimSpace(os.Getenv("PROMPTVAULT_API_KEY"))
	if apiKey != "" {
		api.Use(apiKeyAuthMiddleware(apiKey))
	} else if strings.EqualFold(strings.TrimSpace(os.Getenv("PROMPTVAULT_DISABLE_AUTH")), "true") {
		// Explicitly allow unauthenticated access.
	} else {
		return errors.New("api: missing auth configuration: set PROMPTVAULT_API_KEY or set PROMPTVAULT_DISABLE_AUTH=true")
	}

	api.GET("/health", s.handleHealth)
	api.GET("/providers", s.handleListProviders)

	api.GET("/prompts", s.handleListPrompts)
	api.POST("/prompts", s.handleCreatePrompt)
	api.GET("/prompts/:id", s.handleGetPrompt)
	api.PUT("/prompts/:id", s.handleUpdatePrompt)
	api.DELETE("/prompts/:id", s.handleDeletePrompt)

	api.POST("/prompts/:id/enhance", s.handleEnhancePrompt)
	api.POST("/prompts/:id/render", s.handleRenderPrompt)
	api.POST("/prompts/:id/export", s.handleExportPrompt)
	api.POST("/prompts/:id/versions", s.handleCreateVersion)
	api.GET("/prompts/:id/history", s.handleGetHistory)
	api.POST("/prompts/:id/ratings", s.handleRatePrompt)

	api.POST("/import", s.handleImport)

	return nil
}
