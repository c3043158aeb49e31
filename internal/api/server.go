// Package api exposes the journal service as a JSON API over gin.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"team-journal/internal/journal"
	"team-journal/internal/security"
)

// Options configures the API server.
type Options struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	Logger         *zerolog.Logger
	Auditor        security.Auditor
}

// Server is the JSON API.
type Server struct {
	journal *journal.Service
	tokens  *Tokens
	audit   security.Auditor
	logger  zerolog.Logger
	router  *gin.Engine
	http    *http.Server
}

// NewServer builds the router and the HTTP server around svc.
func NewServer(svc *journal.Service, tokens *Tokens, opts Options) *Server {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	if opts.Auditor == nil {
		opts.Auditor = security.NopAuditor{}
	}

	s := &Server{
		journal: svc,
		tokens:  tokens,
		audit:   opts.Auditor,
		logger:  logger.With().Str("component", "api").Logger(),
	}
	s.router = s.routes(opts.AllowedOrigins)
	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(origins []string) *gin.Engine {
	r := gin.New()
	r.Use(recovery(s.logger), requestLogger(s.logger))

	corsCfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	v1.GET("/healthz", s.health)

	user := v1.Group("/", s.authenticate())
	{
		user.GET("/me", s.getMe)
		user.PUT("/me", s.updateMe)
		user.GET("/me/risk", s.getMyRisk)
		user.GET("/me/stats", s.getMyStats)

		user.GET("/trades", s.listTrades)
		user.POST("/trades", s.submitTrade)
		user.GET("/trades/:id", s.getTrade)
		user.PUT("/trades/:id", s.editTrade)

		user.GET("/leaderboard", s.leaderboard)
	}

	mentor := v1.Group("/mentor", s.authenticate(), requireMentor())
	{
		mentor.GET("/queue", s.reviewQueue)
		mentor.POST("/trades/:id/review", s.reviewTrade)
		mentor.POST("/trades/:id/revision", s.requestRevision)
		mentor.GET("/team", s.teamOverview)
		mentor.GET("/members", s.memberOverview)
		mentor.PUT("/members/:id/active", s.setMemberActive)
		mentor.GET("/users/:id/stats", s.getUserStats)
		mentor.GET("/users/:id/risk", s.getUserRisk)
	}

	return r
}

// Start serves until the server is shut down. It returns nil after a clean Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.http.Addr).Msg("API server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("API server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "trading_day": s.journal.Today().String()})
}
