// Package security provides the audit trail and input validation for journal writes.
package security

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditEventType represents the type of audit event.
type AuditEventType string

const (
	// Identity events
	AuditAuthFailed     AuditEventType = "AUTH_FAILED"
	AuditAccessDenied   AuditEventType = "ACCESS_DENIED"
	AuditProfileUpdated AuditEventType = "PROFILE_UPDATED"

	// Journal events
	AuditTradeSubmitted   AuditEventType = "TRADE_SUBMITTED"
	AuditTradeEdited      AuditEventType = "TRADE_EDITED"
	AuditTradeResubmitted AuditEventType = "TRADE_RESUBMITTED"
	AuditRiskLockBlocked  AuditEventType = "RISK_LOCK_BLOCKED"

	// Review events
	AuditReviewApproved    AuditEventType = "REVIEW_APPROVED"
	AuditRevisionRequested AuditEventType = "REVISION_REQUESTED"

	// Team administration events
	AuditMemberDeactivated AuditEventType = "MEMBER_DEACTIVATED"
	AuditMemberReactivated AuditEventType = "MEMBER_REACTIVATED"
	AuditMemberAdded       AuditEventType = "MEMBER_ADDED"

	// Security events
	AuditInputValidation AuditEventType = "INPUT_VALIDATION"
)

// AuditEvent represents a single audit log entry.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	UserID    string                 `json:"user_id,omitempty"`
	TargetID  string                 `json:"target_id,omitempty"`
	TradeID   string                 `json:"trade_id,omitempty"`
	Action    string                 `json:"action,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Success   bool                   `json:"success"`
	ErrorMsg  string                 `json:"error,omitempty"`
	SessionID string                 `json:"session_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

type requestIDKey struct{}

// WithRequestID attaches a request id that audit events pick up.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id attached to ctx, if any.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Auditor records audit events. NopAuditor is used when auditing is disabled.
type Auditor interface {
	Log(ctx context.Context, event AuditEvent) error
}

// NopAuditor discards every event.
type NopAuditor struct{}

// Log implements Auditor.
func (NopAuditor) Log(context.Context, AuditEvent) error { return nil }

// AuditLogger writes JSON-lines audit events.
type AuditLogger struct {
	writer    io.WriteCloser
	mu        sync.Mutex
	sessionID string
	now       func() time.Time
}

// AuditConfig holds audit logger configuration.
type AuditConfig struct {
	LogDir     string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// DefaultAuditConfig returns the default audit configuration.
func DefaultAuditConfig() AuditConfig {
	home, _ := os.UserHomeDir()
	return AuditConfig{
		LogDir:     filepath.Join(home, ".config", "team-journal", "audit"),
		MaxSize:    50,
		MaxBackups: 30,
		MaxAge:     365,
		Compress:   true,
	}
}

// NewAuditLogger creates a new audit logger rotating under cfg.LogDir.
func NewAuditLogger(cfg AuditConfig) (*AuditLogger, error) {
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "audit.log"),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	return NewAuditLoggerWithWriter(writer), nil
}

// NewAuditLoggerWithWriter creates an audit logger over an arbitrary writer.
func NewAuditLoggerWithWriter(w io.WriteCloser) *AuditLogger {
	return &AuditLogger{
		writer:    w,
		sessionID: generateSessionID(),
		now:       time.Now,
	}
}

// Log logs an audit event.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) error {
	al.mu.Lock()
	defer al.mu.Unlock()

	event.Timestamp = al.now().UTC()
	event.SessionID = al.sessionID
	if event.RequestID == "" {
		event.RequestID = RequestIDFrom(ctx)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serializing audit event: %w", err)
	}

	if _, err := al.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}

	return nil
}

// Close closes the audit logger.
func (al *AuditLogger) Close() error {
	return al.writer.Close()
}

// TradeSubmittedEvent builds the event recorded when a trade is journaled.
func TradeSubmittedEvent(userID, tradeID string, result float64) AuditEvent {
	return AuditEvent{
		EventType: AuditTradeSubmitted,
		UserID:    userID,
		TradeID:   tradeID,
		Success:   true,
		Details:   map[string]interface{}{"result": result},
	}
}

// RiskLockEvent builds the event recorded when the daily lock blocks a submission.
func RiskLockEvent(userID string, totalR float64) AuditEvent {
	return AuditEvent{
		EventType: AuditRiskLockBlocked,
		UserID:    userID,
		Action:    "submit_trade",
		Success:   false,
		ErrorMsg:  "daily risk limit reached",
		Details:   map[string]interface{}{"total_r": totalR},
	}
}

// ReviewEvent builds the event recorded for a mentor decision.
func ReviewEvent(eventType AuditEventType, mentorID, tradeID, ownerID string, details map[string]interface{}) AuditEvent {
	return AuditEvent{
		EventType: eventType,
		UserID:    mentorID,
		TargetID:  ownerID,
		TradeID:   tradeID,
		Success:   true,
		Details:   details,
	}
}

// MemberStatusEvent builds the event recorded when a mentor toggles a member.
func MemberStatusEvent(mentorID, memberID string, active bool) AuditEvent {
	eventType := AuditMemberDeactivated
	if active {
		eventType = AuditMemberReactivated
	}
	return AuditEvent{
		EventType: eventType,
		UserID:    mentorID,
		TargetID:  memberID,
		Success:   true,
	}
}

// AccessDeniedEvent builds the event recorded for an authorization failure.
func AccessDeniedEvent(userID, action, reason string) AuditEvent {
	return AuditEvent{
		EventType: AuditAccessDenied,
		UserID:    userID,
		Action:    action,
		Success:   false,
		ErrorMsg:  reason,
	}
}

// InputValidationEvent builds the event recorded for rejected input.
func InputValidationEvent(userID, field, value, reason string) AuditEvent {
	return AuditEvent{
		EventType: AuditInputValidation,
		UserID:    userID,
		Success:   false,
		ErrorMsg:  reason,
		Details: map[string]interface{}{
			"field": field,
			"value": MaskSensitive(value),
		},
	}
}

// generateSessionID identifies one audit logger instance, so lines from
// different processes sharing a file can be told apart.
func generateSessionID() string {
	return uuid.NewString()
}
