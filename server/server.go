package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/enginemesh/core"
	"github.com/hupe1980/enginemesh/logging"
	"github.com/hupe1980/enginemesh/snapshot"
)

// Analyzer starts analysis streams. *enginemesh.Mesh satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req core.AnalysisRequest, signal *core.CancelSignal) (string, <-chan core.Event)
}

// Options configures the Server.
type Options struct {
	// Heartbeat is the interval between SSE comment frames on idle streams.
	Heartbeat time.Duration
	// Snapshots enables the snapshot retrieval endpoint when set.
	Snapshots snapshot.Store
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Server wires the analysis façade into a gin router.
type Server struct {
	router    *gin.Engine
	analyzer  Analyzer
	heartbeat time.Duration
	snapshots snapshot.Store
	logger    logging.Logger
}

// New builds a server around the given analyzer.
func New(analyzer Analyzer, optFns ...func(o *Options)) *Server {
	opts := Options{
		Heartbeat: 15 * time.Second,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		router:    gin.New(),
		analyzer:  analyzer,
		heartbeat: opts.Heartbeat,
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

// Handler returns the underlying http.Handler, mainly for tests and custom
// server setups.
func (s *Server) Handler() http.Handler { return s.router }

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error { return s.router.Run(addr) }

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/api/analysis/stream", s.handleStream)
	if s.snapshots != nil {
		s.router.GET("/api/analysis/snapshots/:id", s.handleSnapshot)
	}
}

// streamQuery binds the analysis parameters from the query string. Durations
// arrive as milliseconds to keep URLs simple.
type streamQuery struct {
	FEN        string `form:"fen" binding:"required"`
	MultiPV    int    `form:"multipv"`
	MinDepth   int    `form:"min_depth"`
	MaxDepth   int    `form:"max_depth"`
	DepthStep  int    `form:"depth_step"`
	MoveTimeMS int    `form:"movetime_ms"`
	ThrottleMS int    `form:"throttle_ms"`
}

func (q streamQuery) toRequest() core.AnalysisRequest {
	req := core.NewAnalysisRequest(q.FEN)
	if q.MultiPV != 0 {
		req.MultiPV = q.MultiPV
	}
	if q.MinDepth != 0 {
		req.MinDepth = q.MinDepth
	}
	if q.MaxDepth != 0 {
		req.MaxDepth = q.MaxDepth
	}
	if q.DepthStep != 0 {
		req.DepthStep = q.DepthStep
	}
	if q.MoveTimeMS != 0 {
		req.MoveTime = time.Duration(q.MoveTimeMS) * time.Millisecond
	}
	if q.ThrottleMS != 0 {
		req.Throttle = time.Duration(q.ThrottleMS) * time.Millisecond
	}
	return req
}

func (s *Server) handleStream(c *gin.Context) {
	var query streamQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fen query parameter is required"})
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	signal := &core.CancelSignal{}
	sessionID, events := s.analyzer.Analyze(c.Request.Context(), query.toRequest(), signal)
	header.Set("X-Session-ID", sessionID)
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			signal.Cancel()
			// Drain so the session can release its resources and finish.
			for range events {
			}
			s.logger.Debug("client disconnected from analysis stream", "session_id", sessionID)
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(c.Writer, ev); err != nil {
				signal.Cancel()
				for range events {
				}
				return
			}
			c.Writer.Flush()

		case <-heartbeat.C:
			if _, err := fmt.Fprint(c.Writer, ": keepalive\n\n"); err != nil {
				signal.Cancel()
				for range events {
				}
				return
			}
			c.Writer.Flush()
		}
	}
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap, err := s.snapshots.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load snapshot"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// writeSSE emits one typed SSE frame for the event.
func writeSSE(w gin.ResponseWriter, ev core.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.EventType(), data)
	return err
}
