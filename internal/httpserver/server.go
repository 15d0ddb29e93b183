// Package httpserver exposes a read-only HTTP API over the request
// archive.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/geopython/geousage/internal/model"
	"github.com/gin-gonic/gin"
)

const defaultTopLimit = 10

// Server provides an HTTP API for querying archived OGC usage.
type Server struct {
	addr      string
	store     model.UsageQuerier
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store model.UsageQuerier) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	s.registerRoutes(r)

	s.server = &http.Server{
		Handler:           r,
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/summary", s.handleSummary)
	r.GET("/api/top/clients", s.handleTop(s.store.TopClients))
	r.GET("/api/top/resources", s.handleTop(s.store.TopResources))
	r.GET("/api/top/operations", s.handleTop(s.store.TopOperations))
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.store.TotalRequestCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"uptime":        time.Since(s.startTime).String(),
		"request_count": count,
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	count, err := s.store.TotalRequestCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read request count"})
		return
	}

	days, err := s.store.RequestsPerDay()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read per-day counts"})
		return
	}

	perDay := make([]gin.H, 0, len(days))
	for _, d := range days {
		perDay = append(perDay, gin.H{
			"day":   d.Day.Format("2006-01-02"),
			"count": d.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_requests":   count,
		"requests_per_day": perDay,
	})
}

func (s *Server) handleTop(query func(limit int) ([]model.KeyCount, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultTopLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		entries, err := query(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"entries": entries,
			"count":   len(entries),
		})
	}
}
