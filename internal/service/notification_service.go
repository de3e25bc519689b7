package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MaheshMoholkar/ignite-lms/internal/domain/entity"
	"github.com/MaheshMoholkar/ignite-lms/internal/platform/logger"
	"github.com/MaheshMoholkar/ignite-lms/internal/repository"
)

const (
	sweepInterval  = 24 * time.Hour
	sweepRetention = 30 * 24 * time.Hour
)

type NotificationService interface {
	List(ctx context.Context) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, notificationID string) error
	Delete(ctx context.Context, notificationID string) error
	// StartSweeper launches a background loop deleting read notifications
	// older than 30 days. Returns when ctx is cancelled.
	StartSweeper(ctx context.Context)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	log              logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, log logger.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, log: log}
}

func (s *notificationService) List(ctx context.Context) ([]*entity.Notification, error) {
	return s.notificationRepo.List(ctx)
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID string) error {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return repository.ErrNotFound
	}
	return s.notificationRepo.MarkRead(ctx, id)
}

func (s *notificationService) Delete(ctx context.Context, notificationID string) error {
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return repository.ErrNotFound
	}
	return s.notificationRepo.Delete(ctx, id)
}

func (s *notificationService) StartSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("notification sweeper stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-sweepRetention)
			deleted, err := s.notificationRepo.DeleteReadOlderThan(ctx, cutoff)
			if err != nil {
				s.log.Errorf("notification sweep failed: %v", err)
				continue
			}
			if deleted > 0 {
				s.log.Infof("notification sweep removed %d read notifications", deleted)
			}
		}
	}
}
