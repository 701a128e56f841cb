package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
)

// ActivitySink receives one append-only entry per successful lifecycle transition.
type ActivitySink interface {
	Log(ctx context.Context, eventType, message, actorType string, actorID *int64, subjectType string, subjectID int64) error
}

type activityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, error)
}

// ActivityService persists activity entries and mirrors them to the application log.
type ActivityService struct {
	repo   activityRepository
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Log implements ActivitySink.
func (s *ActivityService) Log(ctx context.Context, eventType, message, actorType string, actorID *int64, subjectType string, subjectID int64) error {
	entry := &models.ActivityLog{
		EventType:   eventType,
		Message:     message,
		ActorType:   actorType,
		ActorID:     actorID,
		SubjectType: subjectType,
		SubjectID:   subjectID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("event", eventType),
		zap.String("actor_type", actorType),
		zap.String("subject_type", subjectType),
		zap.Int64("subject_id", subjectID),
	}
	if actorID != nil {
		fields = append(fields, zap.Int64("actor_id", *actorID))
	}
	s.logger.Info(message, fields...)
	return nil
}

// List returns recent activity for the admin feed.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list activity")
	}
	return entries, nil
}
