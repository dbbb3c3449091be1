package service

import (
	"context"
	"strings"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

// PositionService определяет интерфейс бизнес-логики для должностей
type PositionService interface {
	Create(ctx context.Context, unitID int64, req *dto.CreatePositionRequest) (*domain.Position, error)
	GetByUnitID(ctx context.Context, unitID int64) ([]domain.Position, error)
}

type positionService struct {
	posRepo  repository.PositionRepository
	unitRepo repository.UnitRepository
}

// NewPositionService создаёт новый экземпляр сервиса
func NewPositionService(posRepo repository.PositionRepository, unitRepo repository.UnitRepository) PositionService {
	return &positionService{
		posRepo:  posRepo,
		unitRepo: unitRepo,
	}
}

func (s *positionService) Create(ctx context.Context, unitID int64, req *dto.CreatePositionRequest) (*domain.Position, error) {
	// Проверяем существование подразделения
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	pos := &domain.Position{
		UnitID:      unitID,
		Title:       strings.TrimSpace(req.Title),
		IsAvailable: true,
	}

	if err := s.posRepo.Create(ctx, pos); err != nil {
		return nil, err
	}

	return pos, nil
}

func (s *positionService) GetByUnitID(ctx context.Context, unitID int64) ([]domain.Position, error) {
	if _, err := s.unitRepo.GetByID(ctx, unitID); err != nil {
		return nil, err
	}

	return s.posRepo.GetByUnitID(ctx, unitID)
}
