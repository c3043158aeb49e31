package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"team-journal/internal/errors"
	"team-journal/internal/logging"
	"team-journal/internal/models"
	"team-journal/internal/security"
)

const (
	actorKey        = "actor"
	requestIDHeader = "X-Request-ID"
)

// requestLogger attaches a request id and a request-scoped logger, then logs the
// completed request through zerolog.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()[:8]
		}
		c.Header(requestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		ctx := logging.WithLogger(c.Request.Context(), reqLogger)
		ctx = security.WithRequestID(ctx, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logging.LogRequest(reqLogger, c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start), c.Errors.Last())
	}
}

// recovery turns a panic into a 500 and logs it.
func recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		writeError(c, errors.New("internal error"))
	})
}

// authenticate validates the bearer token and resolves the caller's Actor.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			writeError(c, errors.Wrap(errors.ErrNotAuthenticated, "authorization header required"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(c, errors.Wrap(errors.ErrNotAuthenticated, "expected Bearer token"))
			return
		}

		subject, err := s.tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			s.record(c, security.AuditEvent{
				EventType: security.AuditAuthFailed,
				Success:   false,
				ErrorMsg:  err.Error(),
				RequestID: security.RequestIDFrom(c.Request.Context()),
			})
			writeError(c, errors.Wrap(errors.ErrNotAuthenticated, "invalid or expired token"))
			return
		}

		actor, err := s.journal.ResolveActor(c.Request.Context(), subject)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(actorKey, actor)
		ctx := logging.WithLogger(c.Request.Context(), logging.WithUserID(logging.FromContext(c.Request.Context()), actor.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireMentor rejects callers without the mentor role.
func requireMentor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if !actor.IsMentor() {
			writeError(c, errors.NewAuthorizationError(c.FullPath(), actor.UserID, nil))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

// record writes an audit event. Audit failures are logged, never returned.
func (s *Server) record(c *gin.Context, event security.AuditEvent) {
	if err := s.audit.Log(c.Request.Context(), event); err != nil {
		logger := logging.FromContext(c.Request.Context())
		if logger.GetLevel() == zerolog.Disabled {
			logger = s.logger
		}
		logger.Error().Err(err).Str("event_type", string(event.EventType)).Msg("Failed to write audit event")
	}
}
