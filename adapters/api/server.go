package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fhtsuite/app"
	"fhtsuite/internal"
)

// Server exposes the suite service over HTTP
type Server struct {
	router  *gin.Engine
	service *app.SuiteService
	logger  *internal.Logger
}

// NewServer creates a server; ginMode is "debug", "release" or "test"
func NewServer(service *app.SuiteService, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	s := &Server{
		router:  gin.New(),
		service: service,
		logger:  internal.DefaultLogger.WithComponent("API"),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/transform", s.handleTransform)
	api.POST("/score", s.handleScore)
	api.POST("/validate", s.handleValidate)
	api.POST("/suite", s.handleSuite)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

// Handler returns the HTTP handler, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting FHT validation API on http://%s", addr)
	return s.router.Run(addr)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
