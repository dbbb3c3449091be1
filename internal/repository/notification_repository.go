package repository

import (
	"context"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository определяет интерфейс для работы с уведомлениями
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id int64) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	// MarkAllRead помечает прочитанными уведомления пользователя, а при nil - всех пользователей
	MarkAllRead(ctx context.Context, userID *int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository создаёт новый экземпляр репозитория
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	return translate(conn(ctx, r.db).Create(n).Error, nil, nil)
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	if err := conn(ctx, r.db).First(&n, id).Error; err != nil {
		return nil, translate(err, domain.ErrNotificationNotFound, nil)
	}
	return &n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error) {
	var notifications []domain.Notification
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&notifications).Error
	return notifications, translate(err, nil, nil)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID *int64) (int64, error) {
	query := conn(ctx, r.db).Model(&domain.Notification{}).Where("is_read = ?", false)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	result := query.Update("is_read", true)
	return result.RowsAffected, translate(result.Error, nil, nil)
}

func (r *notificationRepository) Delete(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).Delete(&domain.Notification{}, id)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
