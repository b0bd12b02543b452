package service

import (
	"context"
	"fmt"
	"strings"

	"clanwallet/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type notificationService struct {
	uowFactory UnitOfWorkFactory
	push       PushPublisher
}

// NewNotificationService creates a new notification service. push may be nil,
// in which case only in-app notifications are stored.
func NewNotificationService(uowFactory UnitOfWorkFactory, push PushPublisher) NotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		push:       push,
	}
}

func normalizeNotification(req *models.NotificationRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Type == "" {
		req.Type = models.NotificationTypeGeneral
	}
	if req.Title == "" || req.Message == "" {
		return newValidationError("Title and message are required")
	}
	return nil
}

func (s *notificationService) Send(ctx context.Context, req models.NotificationRequest) (int, error) {
	if err := normalizeNotification(&req); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var recipients []uuid.UUID
	if req.UserID != nil {
		profile, err := uow.ProfileRepository().GetByID(ctx, *req.UserID)
		if err != nil {
			return 0, fmt.Errorf("failed to get profile: %w", err)
		}
		if profile == nil {
			return 0, ErrProfileNotFound
		}
		recipients = []uuid.UUID{profile.ID}
	} else {
		ids, err := uow.ProfileRepository().GetAllIDs(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to get recipients: %w", err)
		}
		recipients = ids
	}

	return s.deliver(ctx, uow, recipients, req)
}

func (s *notificationService) BroadcastExcept(ctx context.Context, excludeID uuid.UUID, req models.NotificationRequest) (int, error) {
	if err := normalizeNotification(&req); err != nil {
		return 0, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.ProfileRepository().GetAllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get recipients: %w", err)
	}

	recipients := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != excludeID {
			recipients = append(recipients, id)
		}
	}

	return s.deliver(ctx, uow, recipients, req)
}

// deliver stores one in-app row per recipient, commits, then hands the push request off.
// Push is best effort; the in-app rows are the record.
func (s *notificationService) deliver(ctx context.Context, uow UnitOfWork, recipients []uuid.UUID, req models.NotificationRequest) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}

	notifications := make([]*models.Notification, 0, len(recipients))
	for _, id := range recipients {
		notifications = append(notifications, &models.Notification{
			UserID:     id,
			Type:       req.Type,
			Title:      req.Title,
			Message:    req.Message,
			Data:       req.Data,
			ActionData: req.ActionData,
		})
	}

	if err := uow.NotificationRepository().CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to store notifications: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.push != nil {
		if err := s.push.PublishPush(ctx, &models.PushMessage{
			UserIDs: recipients,
			Type:    req.Type,
			Title:   req.Title,
			Message: req.Message,
			Data:    req.Data,
		}); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"type":       req.Type,
				"recipients": len(recipients),
			}).Warn("Failed to publish push notification")
		}
	}

	return len(notifications), nil
}
