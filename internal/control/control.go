// Package control serves the local HTTP control surface.
package control

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"openwhisper/internal/history"
	"openwhisper/internal/settings"
)

// Status is the snapshot returned by GET /status.
type Status struct {
	State     string `json:"state"`
	Model     string `json:"model"`
	Hotkey    string `json:"hotkey"`
	Toggle    bool   `json:"toggle_mode"`
	HasReplay bool   `json:"has_replay"`
	Capturing bool   `json:"capturing_hotkey"`
}

// SettingsPatch carries optional settings changes.
type SettingsPatch struct {
	Hotkey     *string `json:"hotkey"`
	ToggleMode *bool   `json:"toggle_mode"`
	Model      *string `json:"model"`
	AutoStart  *bool   `json:"auto_start"`
}

// Controller is the application as seen by the control surface.
type Controller interface {
	StartRecording() error
	StopRecording(ctx context.Context) error
	Replay() (bool, error)
	Shutdown()
	Status() Status

	History() []history.Entry
	ClearHistory() error
	ReplayHistory(id string) error

	Settings() settings.Settings
	UpdateSettings(p SettingsPatch) (settings.Settings, error)

	StartHotkeyCapture() error
	StopHotkeyCapture() (string, error)
}

// ErrInvalid marks a rejected request body or value.
var ErrInvalid = errors.New("invalid request")

// Server is the gin engine plus the event hub.
type Server struct {
	ctl    Controller
	events *Events
	engine *gin.Engine
	logger *zap.SugaredLogger
	srv    *http.Server
}

// New builds the routes.
func New(ctl Controller, events *Events, logger *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{ctl: ctl, events: events, engine: engine, logger: logger}
	s.routes()
	return s
}

// Handler exposes the routes for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() {
	r := s.engine
	r.GET("/start_recording", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "server_running"})
	})
	r.POST("/start_recording", s.startRecording)
	r.POST("/stop_recording", s.stopRecording)
	r.POST("/replay", s.replay)
	r.POST("/shutdown", s.shutdown)

	r.GET("/status", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctl.Status()) })
	r.GET("/events", s.events.Serve)

	h := r.Group("/history")
	h.GET("", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctl.History()) })
	h.DELETE("", s.clearHistory)
	h.POST("/:id/replay", s.replayHistory)

	r.GET("/settings", func(c *gin.Context) { c.JSON(http.StatusOK, s.ctl.Settings()) })
	r.PUT("/settings", s.updateSettings)

	hk := r.Group("/hotkey/record")
	hk.POST("/start", s.startHotkeyCapture)
	hk.POST("/stop", s.stopHotkeyCapture)
}

func (s *Server) startRecording(c *gin.Context) {
	err := s.ctl.StartRecording()
	if err != nil {
		s.logger.Infow("start_recording rejected", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": err == nil})
}

func (s *Server) stopRecording(c *gin.Context) {
	err := s.ctl.StopRecording(c.Request.Context())
	if err != nil {
		s.logger.Infow("stop_recording rejected", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": err == nil})
}

func (s *Server) replay(c *gin.Context) {
	ok, err := s.ctl.Replay()
	c.JSON(http.StatusOK, gin.H{"success": ok && err == nil})
}

func (s *Server) shutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
	go s.ctl.Shutdown()
}

func (s *Server) clearHistory(c *gin.Context) {
	if err := s.ctl.ClearHistory(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) replayHistory(c *gin.Context) {
	err := s.ctl.ReplayHistory(c.Param("id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case err != nil:
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func (s *Server) updateSettings(c *gin.Context) {
	var p SettingsPatch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	st, err := s.ctl.UpdateSettings(p)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrInvalid) {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) startHotkeyCapture(c *gin.Context) {
	if err := s.ctl.StartHotkeyCapture(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) stopHotkeyCapture(c *gin.Context) {
	hotkey, err := s.ctl.StopHotkeyCapture()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "hotkey": hotkey})
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("control server listening", "addr", addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.events.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func requestLogger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugw("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
