package repository

import (
	"context"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository определяет интерфейс для работы с запросами и их решениями
type RequestRepository interface {
	// Create вставляет запрос; второй открытый запрос на ресурс - ErrOpenRequestExists
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
	HasOpenForResource(ctx context.Context, resourceID int64) (bool, error)
	Close(ctx context.Context, id int64) error

	CreateValidation(ctx context.Context, val *domain.Validation) error
	GetValidationForUpdate(ctx context.Context, id int64) (*domain.Validation, error)
	// Decide записывает решение только если оно ещё в ожидании
	Decide(ctx context.Context, val *domain.Validation) error
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository создаёт новый экземпляр репозитория
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	// Решение и ресурс сохраняются отдельно
	return translate(conn(ctx, r.db).Omit(clause.Associations).Create(req).Error, nil, domain.ErrOpenRequestExists)
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	var req domain.Request
	if err := conn(ctx, r.db).Preload("Validation").First(&req, id).Error; err != nil {
		return nil, translate(err, domain.ErrRequestNotFound, nil)
	}
	return &req, nil
}

func (r *requestRepository) HasOpenForResource(ctx context.Context, resourceID int64) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&domain.Request{}).
		Where("resource_id = ? AND is_open = ?", resourceID, true).
		Count(&count).Error
	return count > 0, translate(err, nil, nil)
}

func (r *requestRepository) Close(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&domain.Request{}).
		Where("id = ?", id).
		Update("is_open", false)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *requestRepository) CreateValidation(ctx context.Context, val *domain.Validation) error {
	return translate(conn(ctx, r.db).Create(val).Error, nil, nil)
}

func (r *requestRepository) GetValidationForUpdate(ctx context.Context, id int64) (*domain.Validation, error) {
	var val domain.Validation
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&val, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrValidationNotFound, nil)
	}
	return &val, nil
}

func (r *requestRepository) Decide(ctx context.Context, val *domain.Validation) error {
	result := conn(ctx, r.db).
		Model(&domain.Validation{}).
		Where("id = ? AND status = ?", val.ID, domain.ValidationPending).
		Updates(map[string]any{
			"validator_id":     val.ValidatorID,
			"status":           val.Status,
			"validation_date":  val.ValidationDate,
			"delivery_date":    val.DeliveryDate,
			"rejection_reason": val.RejectionReason,
		})
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrValidationNotPending
	}
	return nil
}
