package repository

import (
	"context"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
)

// PositionRepository определяет интерфейс для работы с должностями
type PositionRepository interface {
	Create(ctx context.Context, pos *domain.Position) error
	GetByID(ctx context.Context, id int64) (*domain.Position, error)
	GetByUnitID(ctx context.Context, unitID int64) ([]domain.Position, error)
	// Occupy переводит свободную должность в занятую; занятая - ErrPositionOccupied
	Occupy(ctx context.Context, id int64) error
	Vacate(ctx context.Context, id int64) error
	ReassignToUnit(ctx context.Context, fromUnitID, toUnitID int64) error
}

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository создаёт новый экземпляр репозитория
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) Create(ctx context.Context, pos *domain.Position) error {
	return translate(conn(ctx, r.db).Create(pos).Error, nil, nil)
}

func (r *positionRepository) GetByID(ctx context.Context, id int64) (*domain.Position, error) {
	var pos domain.Position
	if err := conn(ctx, r.db).First(&pos, id).Error; err != nil {
		return nil, translate(err, domain.ErrPositionNotFound, nil)
	}
	return &pos, nil
}

func (r *positionRepository) GetByUnitID(ctx context.Context, unitID int64) ([]domain.Position, error) {
	var positions []domain.Position
	err := conn(ctx, r.db).
		Where("unit_id = ?", unitID).
		Order("id ASC").
		Find(&positions).Error
	return positions, translate(err, nil, nil)
}

func (r *positionRepository) Occupy(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&domain.Position{}).
		Where("id = ? AND is_available = ?", id, true).
		Update("is_available", false)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrPositionOccupied
	}
	return nil
}

func (r *positionRepository) Vacate(ctx context.Context, id int64) error {
	result := conn(ctx, r.db).
		Model(&domain.Position{}).
		Where("id = ?", id).
		Update("is_available", true)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrPositionNotFound
	}
	return nil
}

func (r *positionRepository) ReassignToUnit(ctx context.Context, fromUnitID, toUnitID int64) error {
	err := conn(ctx, r.db).
		Model(&domain.Position{}).
		Where("unit_id = ?", fromUnitID).
		Update("unit_id", toUnitID).Error
	return translate(err, nil, nil)
}
