// Package api exposes the obfuscation operation over HTTP. The request
// body is the same payload shape the Lambda handler accepts; the
// response status and body come straight from the result envelope.
package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdpr-toolkit/obfuscator/pkg/handler"
	"github.com/gdpr-toolkit/obfuscator/pkg/version"
)

// Server is the HTTP invocation surface.
type Server struct {
	handler *handler.Handler
}

// NewServer creates the API server over the given request handler.
func NewServer(h *handler.Handler) *Server {
	return &Server{handler: h}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", s.health)
	r.POST("/api/v1/obfuscate", s.obfuscate)
	return r
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Full(),
	})
}

// obfuscate handles POST /api/v1/obfuscate. The envelope's status class
// becomes the HTTP status; its body becomes the response body.
func (s *Server) obfuscate(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	result := s.handler.Handle(c.Request.Context(), raw)
	c.Data(result.StatusCode, "application/json", []byte(result.Body))
}
