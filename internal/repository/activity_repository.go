package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
)

// ActivityLogRepository appends and reads the lifecycle audit trail.
type ActivityLogRepository struct {
	db dbtx
}

// NewActivityLogRepository constructs an ActivityLogRepository.
func NewActivityLogRepository(db dbtx) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create appends an activity entry.
func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_logs (id, event_type, message, actor_type, actor_id, subject_type, subject_id, created_at)
        VALUES (:id, :event_type, :message, :actor_type, :actor_id, :subject_type, :subject_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *ActivityLogRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, error) {
	var conditions []string
	var args []interface{}
	if filter.EventType != "" {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", len(args)+1))
		args = append(args, filter.EventType)
	}
	if filter.SubjectType != "" {
		conditions = append(conditions, fmt.Sprintf("subject_type = $%d", len(args)+1))
		args = append(args, filter.SubjectType)
	}
	if filter.SubjectID > 0 {
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}

	query := `SELECT id, event_type, message, actor_type, actor_id, subject_type, subject_id, created_at FROM activity_logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d OFFSET %d", limit, offset)

	var entries []models.ActivityLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return entries, nil
}
