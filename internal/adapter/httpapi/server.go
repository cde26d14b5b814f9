package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"faqbot/internal/adapter/metrics"
	"faqbot/internal/domain"
)

const DefaultSessionCookie = "faqbot_session"

// Chatter answers one query within a session.
type Chatter interface {
	Handle(ctx context.Context, sessionID, query string) (domain.Reply, error)
}

// Server exposes the chat service over HTTP.
type Server struct {
	chat      Chatter
	entries   int
	cookie    string
	staticDir string
	metrics   *metrics.Metrics
	locks     *sessionLocks
	logger    *slog.Logger
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithStaticDir(dir string) Option {
	return func(s *Server) {
		s.staticDir = dir
	}
}

func WithSessionCookie(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookie = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewServer creates a server; entries is reported by the health check.
func NewServer(chat Chatter, entries int, opts ...Option) *Server {
	s := &Server{
		chat:    chat,
		entries: entries,
		cookie:  DefaultSessionCookie,
		locks:   newSessionLocks(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.POST("/get_answer", s.getAnswer)
	r.GET("/healthz", s.healthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	if s.staticDir != "" {
		r.StaticFile("/", filepath.Join(s.staticDir, "index.html"))
		r.Static("/static", s.staticDir)
	}
	return r
}

type answerRequest struct {
	Query string `json:"query"`
}

type answerResponse struct {
	Answer      string             `json:"answer"`
	Confidence  float64            `json:"confidence"`
	Intent      *string            `json:"intent"`
	Outcome     domain.Outcome     `json:"outcome"`
	Kind        domain.ReplyKind   `json:"kind"`
	Suggestions []domain.Candidate `json:"suggestions"`
}

func (s *Server) getAnswer(c *gin.Context) {
	start := time.Now()

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sessionID := s.session(c)
	unlock := s.locks.lock(sessionID)
	reply, err := s.chat.Handle(c.Request.Context(), sessionID, req.Query)
	unlock()
	if err != nil {
		s.logger.Error("failed to answer", "session", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer"})
		return
	}

	if s.metrics != nil {
		s.metrics.ObserveReply(reply, time.Since(start))
	}

	resp := answerResponse{
		Answer:      reply.Answer,
		Confidence:  reply.Confidence,
		Outcome:     reply.Outcome,
		Kind:        reply.Kind,
		Suggestions: reply.Suggestions,
	}
	if reply.Intent != "" {
		intent := reply.Intent
		resp.Intent = &intent
	}
	if resp.Suggestions == nil {
		resp.Suggestions = []domain.Candidate{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "entries": s.entries})
}

// session returns the caller's session id, issuing a new cookie when the
// request has none or an invalid one.
func (s *Server) session(c *gin.Context) string {
	if id, err := c.Cookie(s.cookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cookie, id, 0, "/", "", false, true)
	return id
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
