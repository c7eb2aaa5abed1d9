// Package httpapi exposes the suggestion service to the surrounding
// product over HTTP. The response contract is deliberately uniform: the
// body always carries a suggestions array, empty on any internal
// failure, so the editing UI never blocks on this subsystem. The only
// non-200 outcome is 403 when the caller lacks project access.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/custodia-labs/veritas/internal/core/domain"
	"github.com/custodia-labs/veritas/internal/core/ports/driving"
	"github.com/custodia-labs/veritas/internal/logger"
)

// Header names.
const (
	// HeaderUserID carries the authenticated user, injected by the
	// product's gateway after session validation.
	HeaderUserID = "X-User-ID"

	// HeaderDegraded reports the machine-readable cause when the body's
	// empty suggestions mask a pipeline failure. Absent on success and
	// on genuine zero-finding results.
	HeaderDegraded = "X-Suggestion-Degraded"
)

// Server serves the suggestion API.
type Server struct {
	echo    *echo.Echo
	service driving.SuggestionService
	timeout time.Duration
}

// suggestionRequest is the POST body.
type suggestionRequest struct {
	CurrentText string `json:"current_text"`
}

// NewServer creates the HTTP server around a suggestion service.
// timeout is the overall per-request deadline imposed on the pipeline;
// zero means 30 seconds.
func NewServer(service driving.SuggestionService, timeout time.Duration) *Server {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, service: service, timeout: timeout}

	e.GET("/healthz", s.health)
	e.POST("/api/projects/:projectID/suggestions", s.suggestions)

	return s
}

// Start begins serving on the given address, blocking until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) suggestions(c echo.Context) error {
	requestID := uuid.NewString()

	var body suggestionRequest
	if err := c.Bind(&body); err != nil {
		logger.Warn("[%s] Malformed suggestion request: %v", requestID, err)
		// Even a malformed body keeps the response shape.
		return c.JSON(http.StatusOK, domain.EmptyResult(domain.CauseNone))
	}

	req := domain.SuggestionRequest{
		UserID:      c.Request().Header.Get(HeaderUserID),
		ProjectID:   c.Param("projectID"),
		CurrentText: body.CurrentText,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	logger.Debug("[%s] Suggestion request: project=%s user=%s", requestID, req.ProjectID, req.UserID)
	result := s.service.GetSuggestions(ctx, req)

	if result.Cause == domain.CauseAuthorization {
		logger.Warn("[%s] Access denied: project=%s user=%s", requestID, req.ProjectID, req.UserID)
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}

	if result.Cause != domain.CauseNone {
		c.Response().Header().Set(HeaderDegraded, string(result.Cause))
	}
	return c.JSON(http.StatusOK, result)
}
