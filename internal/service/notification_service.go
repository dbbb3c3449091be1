package service

import (
	"context"
	"log/slog"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/repository"
	"github.com/resource-request-api/internal/worker"
)

// Notice - уведомление, ожидающее записи
type Notice struct {
	UserID    int64
	EventType string
	Message   string
	Data      map[string]any
}

// NotificationService определяет интерфейс работы с уведомлениями.
// Notify не возвращает ошибок: запись выполняется в фоне, сбой только логируется.
type NotificationService interface {
	Notify(notices ...Notice)
	ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID *int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type notificationService struct {
	notifRepo   repository.NotificationRepository
	userRepo    repository.UserRepository
	outbox      *worker.Outbox
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
}

// NewNotificationService создаёт новый экземпляр сервиса
func NewNotificationService(
	notifRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	outbox *worker.Outbox,
	broadcaster *broadcast.Broadcaster,
	logger *slog.Logger,
) NotificationService {
	return &notificationService{
		notifRepo:   notifRepo,
		userRepo:    userRepo,
		outbox:      outbox,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (s *notificationService) Notify(notices ...Notice) {
	for _, notice := range notices {
		n := &domain.Notification{
			UserID:    notice.UserID,
			EventType: notice.EventType,
			Message:   notice.Message,
			Data:      notice.Data,
		}

		s.outbox.Enqueue(worker.Job{
			Name: "notify " + notice.EventType,
			Run: func(ctx context.Context) error {
				if err := s.notifRepo.Create(ctx, n); err != nil {
					return err
				}
				if err := s.broadcaster.Send(ctx, broadcast.EntityNotification, broadcast.ActionCreated); err != nil {
					s.logger.Warn("notification broadcast failed",
						slog.Int64("notification_id", n.ID),
						slog.Any("error", err),
					)
				}
				return nil
			},
		})
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	// Проверяем существование пользователя
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.notifRepo.ListForUser(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) (*domain.Notification, error) {
	if err := s.notifRepo.MarkRead(ctx, id); err != nil {
		return nil, err
	}

	n, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityNotification, broadcast.ActionModified)
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID *int64) (int64, error) {
	if userID != nil {
		if _, err := s.userRepo.GetByID(ctx, *userID); err != nil {
			return 0, err
		}
	}

	updated, err := s.notifRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.broadcaster.Announce(broadcast.EntityNotification, broadcast.ActionModified)
	}
	return updated, nil
}

func (s *notificationService) Delete(ctx context.Context, id int64) error {
	if err := s.notifRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.broadcaster.Announce(broadcast.EntityNotification, broadcast.ActionDeleted)
	return nil
}
