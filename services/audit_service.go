package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
	"github.com/blogem/corpdata-hub/repositories"
)

// AuditLogger records attempted actions. Recording is best-effort: failures
// are logged for the operator and never reach the caller.
type AuditLogger interface {
	Record(ctx context.Context, clientID, sessionID, action, details string)
}

// auditLogger implements AuditLogger on an AuditRepository
type auditLogger struct {
	repo   repositories.AuditRepository
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(repo repositories.AuditRepository, logger logrus.FieldLogger) AuditLogger {
	return &auditLogger{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// Record synchronously appends one audit record. It does not retry.
func (a *auditLogger) Record(ctx context.Context, clientID, sessionID, action, details string) {
	record := &models.AuditRecord{
		LogID:     a.newID(),
		ClientID:  clientID,
		SessionID: sessionID,
		Timestamp: a.now(),
		Action:    action,
		Details:   details,
	}

	log := a.logger.WithFields(logrus.Fields{
		"client_id":  clientID,
		"session_id": sessionID,
		"action":     action,
	})

	if err := a.repo.Create(ctx, record); err != nil {
		log.WithError(err).Warn("Failed to create audit log")
		return
	}
	log.Debug("audit: action recorded")
}
