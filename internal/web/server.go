// Package web provides an HTTP status server for the countdown-timer daemon,
// plus the virtual button panel used in simulation.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/logger"
	"github.com/sweeney/countdown-timer/internal/status"
)

const (
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Panel is the virtual front panel driven over HTTP in simulation.
type Panel interface {
	SetButton(name string, pressed bool) error
	SetValue(v uint16)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	panel      Panel
	log        *logger.Logger
}

// New creates a Server that reads state from the given tracker. The panel
// routes are registered only when panel is non-nil.
func New(addr string, tracker *status.Tracker, panel Panel, log *logger.Logger) *Server {
	s := &Server{tracker: tracker, panel: panel, log: log}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.handleIndex)
	router.GET("/index.html", s.handleIndex)
	router.GET("/index.json", s.handleJSON)
	router.GET("/ws", s.handleWS)

	if s.panel != nil {
		api := router.Group("/api")
		{
			api.POST("/buttons/:name", s.handleButton)
			api.PUT("/adc", s.handleADC)
		}
	}
	return router
}

// Handler returns the HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(c *gin.Context) {
	snap := s.tracker.Snapshot()
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := renderHTML(c.Writer, snap); err != nil {
		s.log.Warnw("render index failed", "err", err)
	}
}

func (s *Server) handleJSON(c *gin.Context) {
	snap := s.tracker.Snapshot()
	c.Data(http.StatusOK, "application/json", status.FormatJSON(snap))
}

func (s *Server) handleButton(c *gin.Context) {
	pressed, err := strconv.ParseBool(c.DefaultQuery("pressed", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pressed must be true or false"})
		return
	}

	name := c.Param("name")
	if err := s.panel.SetButton(name, pressed); err != nil {
		if errors.Is(err, gpio.ErrUnknownButton) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.log.Debugw("panel button", "name", name, "pressed", pressed)
	c.Status(http.StatusNoContent)
}

type adcRequest struct {
	Value *uint16 `json:"value" binding:"required"`
}

func (s *Server) handleADC(c *gin.Context) {
	var req adcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Value > gpio.AnalogMax {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value must be between 0 and 1023"})
		return
	}
	s.panel.SetValue(*req.Value)
	s.log.Debugw("panel adc", "value", *req.Value)
	c.Status(http.StatusNoContent)
}
