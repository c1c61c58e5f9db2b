package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/promptvault/internal/convert"
	"github.com/stellarlinkco/promptvault/internal/manager"
	"github.com/stellarlinkco/promptvault/internal/prompt"
	"github.com/stellarlinkco/promptvault/internal/provider"
	"github.com/stellarlinkco/promptvault/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListProviders(c *gin.Context) {
	type providerInfo struct {
		ID           string `json:"id"`
		DefaultModel string `json:"default_model"`
	}
	var out []providerInfo
	for _, id := range s.providers.IDs() {
		adapter, ok := s.providers.Get(id)
		if !ok {
			continue
		}
		out = append(out, providerInfo{
			ID:           adapter.ID(),
			DefaultModel: adapter.DefaultOptions().Model,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListPrompts(c *gin.Context) {
	limit, err := parseLimitParam(c.Query("limit"), 0)
	if err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}

	filter := store.Filter{
		Status: prompt.Status(strings.TrimSpace(c.Query("status"))),
		Owner:  strings.TrimSpace(c.Query("owner")),
		Tag:    strings.TrimSpace(c.Query("tag")),
		Query:  strings.TrimSpace(c.Query("q")),
		Limit:  limit,
	}
	if filter.Status != "" && !prompt.ValidStatus(filter.Status) {
		respondStatus(c, http.StatusBadRequest, fmt.Errorf("unknown status %q", filter.Status))
		return
	}

	var records []*prompt.Record
	if filter.Query != "" {
		records, err = s.manager.Search(c.Request.Context(), filter)
	} else {
		records, err = s.manager.List(c.Request.Context(), filter)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*prompt.Record{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreatePrompt(c *gin.Context) {
	var in manager.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	r, err := s.manager.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (s *Server) handleGetPrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleUpdatePrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var in manager.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	updated, err := s.manager.Update(c.Request.Context(), r.ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeletePrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	if err := s.manager.Delete(c.Request.Context(), r.ID, actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type enhanceRequest struct {
	Context string `json:"context,omitempty"`
	Author  string `json:"author,omitempty"`
}

func (s *Server) handleEnhancePrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var req enhanceRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondStatus(c, http.StatusBadRequest, err)
			return
		}
	}
	enhanced, err := s.manager.Enhance(c.Request.Context(), r.ID, req.Context, req.Author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, enhanced)
}

type renderRequest struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model,omitempty"`
	Variables   map[string]any `json:"variables,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Temperature float64        `json:"temperature,omitempty"`
	Filename    string         `json:"filename,omitempty"`
}

func (req *renderRequest) options() provider.RenderOptions {
	return provider.RenderOptions{
		Model:       req.Model,
		Variables:   req.Variables,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
}

func (s *Server) handleRenderPrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Provider) == "" {
		respondStatus(c, http.StatusBadRequest, errors.New("provider is required"))
		return
	}
	payload, err := s.manager.Render(c.Request.Context(), r.ID, req.Provider, req.options())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleExportPrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Provider) == "" {
		respondStatus(c, http.StatusBadRequest, errors.New("provider is required"))
		return
	}
	export, err := s.manager.ExportPrompt(c.Request.Context(), r.ID, req.Provider, req.options(), req.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename": export.Filename,
		"document": export.Document,
	})
}

type versionRequest struct {
	Message string `json:"message"`
	Author  string `json:"author"`
}

func (s *Server) handleCreateVersion(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	updated, err := s.manager.CreateVersion(c.Request.Context(), r.ID, req.Message, req.Author)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, updated)
}

func (s *Server) handleGetHistory(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	view, err := s.manager.History(c.Request.Context(), r.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type ratingRequest struct {
	User  string `json:"user"`
	Score int    `json:"score"`
	Note  string `json:"note,omitempty"`
}

func (s *Server) handleRatePrompt(c *gin.Context) {
	r, ok := s.loadRecord(c)
	if !ok {
		return
	}
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	updated, err := s.manager.Rate(c.Request.Context(), r.ID, req.User, req.Score, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleImport(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondStatus(c, http.StatusBadRequest, err)
		return
	}
	if len(raw) == 0 {
		respondStatus(c, http.StatusBadRequest, errors.New("empty request body"))
		return
	}

	opts := convert.Options{
		Conflict:  convert.ConflictResolution(strings.TrimSpace(c.Query("conflict"))),
		Author:    strings.TrimSpace(c.Query("author")),
		AsVariant: strings.EqualFold(strings.TrimSpace(c.Query("as_variant")), "true"),
	}

	res := s.importer.ImportContent(c.Request.Context(), raw, opts)
	switch res.Outcome {
	case convert.OutcomeImported:
		c.JSON(http.StatusCreated, res)
	case convert.OutcomeSkipped:
		c.JSON(http.StatusOK, res)
	default:
		if res.Err != nil {
			respondError(c, res.Err)
			return
		}
		respondStatus(c, http.StatusBadRequest, errors.New(res.Reason))
	}
}

// loadRecord resolves the path parameter as an id first, then as a
// slug.
func (s *Server) loadRecord(c *gin.Context) (*prompt.Record, bool) {
	key := strings.TrimSpace(c.Param("id"))
	if key == "" {
		respondStatus(c, http.StatusBadRequest, errors.New("missing prompt id"))
		return nil, false
	}

	r, err := s.manager.Get(c.Request.Context(), key)
	if err == nil {
		return r, true
	}
	if !errors.Is(err, prompt.ErrNotFound) {
		respondError(c, err)
		return nil, false
	}

	r, err = s.manager.GetBySlug(c.Request.Context(), key)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return r, true
}

// respondError maps the error kind onto an HTTP status.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, prompt.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, prompt.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, prompt.ErrPrecondition):
		status = http.StatusPreconditionFailed
	case errors.Is(err, prompt.ErrExternal):
		status = http.StatusBadGateway
	}
	respondStatus(c, status, err)
}

func respondStatus(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	if v <= 0 {
		return 0, fmt.Errorf("limit must be > 0")
	}
	return v, nil
}

func actorFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("X-Actor"))
}
