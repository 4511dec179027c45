package repositories

import (
	"context"

	"github.com/blogem/corpdata-hub/database"
	"github.com/blogem/corpdata-hub/models"
)

// AuditRepository handles audit log persistence
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
}

type sqliteAuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new audit record
func (r *sqliteAuditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	query := `
		INSERT INTO ` + database.LogCollection + ` (id, client_id, session_id, timestamp, action, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx,
		query,
		record.LogID,
		record.ClientID,
		record.SessionID,
		record.Timestamp,
		record.Action,
		record.Details,
	)

	return err
}
