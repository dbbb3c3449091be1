package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

// UnitService определяет интерфейс бизнес-логики для подразделений
type UnitService interface {
	Create(ctx context.Context, req *dto.CreateUnitRequest) (*domain.Unit, error)
	GetByID(ctx context.Context, id int64, query *dto.GetUnitQuery) (*domain.Unit, error)
	Update(ctx context.Context, id int64, req *dto.UpdateUnitRequest) (*domain.Unit, error)
	Delete(ctx context.Context, id int64, query *dto.DeleteUnitQuery) error
}

type unitService struct {
	txManager   repository.TxManager
	unitRepo    repository.UnitRepository
	posRepo     repository.PositionRepository
	broadcaster *broadcast.Broadcaster
}

// NewUnitService создаёт новый экземпляр сервиса
func NewUnitService(
	txManager repository.TxManager,
	unitRepo repository.UnitRepository,
	posRepo repository.PositionRepository,
	broadcaster *broadcast.Broadcaster,
) UnitService {
	return &unitService{
		txManager:   txManager,
		unitRepo:    unitRepo,
		posRepo:     posRepo,
		broadcaster: broadcaster,
	}
}

func (s *unitService) Create(ctx context.Context, req *dto.CreateUnitRequest) (*domain.Unit, error) {
	// Проверяем существование родительского подразделения
	if req.ParentID != nil {
		if _, err := s.unitRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	unit := &domain.Unit{
		ParentID: req.ParentID,
		Type:     strings.TrimSpace(req.Type),
		Title:    strings.TrimSpace(req.Title),
	}

	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityUnit, broadcast.ActionCreated)
	return unit, nil
}

func (s *unitService) GetByID(ctx context.Context, id int64, query *dto.GetUnitQuery) (*domain.Unit, error) {
	return s.unitRepo.GetByIDWithChildren(ctx, id, query.Depth, query.IncludePositions)
}

func (s *unitService) Update(ctx context.Context, id int64, req *dto.UpdateUnitRequest) (*domain.Unit, error) {
	var unit *domain.Unit

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		unit, err = s.unitRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Type != nil {
			unit.Type = strings.TrimSpace(*req.Type)
		}
		if req.Title != nil {
			unit.Title = strings.TrimSpace(*req.Title)
		}

		// Обновляем parent_id, если передано
		if req.ParentID != nil {
			newParentID := *req.ParentID

			// Проверка: нельзя сделать подразделение родителем самого себя
			if newParentID == id {
				return domain.ErrSelfReference
			}

			if _, err := s.unitRepo.GetByID(ctx, newParentID); err != nil {
				return err
			}

			// Проверка на циклическую ссылку: нельзя переместить в своего потомка
			isDescendant, err := s.unitRepo.IsDescendant(ctx, id, newParentID)
			if err != nil {
				return err
			}
			if isDescendant {
				return domain.ErrCyclicReference
			}

			unit.ParentID = &newParentID
		}

		return s.unitRepo.Update(ctx, unit)
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityUnit, broadcast.ActionModified)
	return unit, nil
}

func (s *unitService) Delete(ctx context.Context, id int64, query *dto.DeleteUnitQuery) error {
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.unitRepo.GetByID(ctx, id); err != nil {
			return err
		}

		switch query.Mode {
		case "cascade":
			return s.unitRepo.Delete(ctx, id)

		case "reassign":
			if query.ReassignToUnitID == nil {
				return domain.ErrReassignTargetRequired
			}
			targetID := *query.ReassignToUnitID

			if targetID == id {
				return domain.ErrCannotReassignToSelf
			}

			if _, err := s.unitRepo.GetByID(ctx, targetID); err != nil {
				if errors.Is(err, domain.ErrUnitNotFound) {
					return domain.ErrReassignTargetNotFound
				}
				return err
			}

			descendants, err := s.unitRepo.GetAllDescendantIDs(ctx, id)
			if err != nil {
				return err
			}
			// Цель внутри удаляемого поддерева исчезнет вместе с ним
			if slices.Contains(descendants, targetID) {
				return domain.ErrCannotReassignToSelf
			}

			// Должности всего поддерева переходят к целевому подразделению
			for _, unitID := range append(descendants, id) {
				if err := s.posRepo.ReassignToUnit(ctx, unitID, targetID); err != nil {
					return err
				}
			}

			return s.unitRepo.Delete(ctx, id)

		default:
			return domain.ErrInvalidDeleteMode
		}
	})
	if err != nil {
		return err
	}

	s.broadcaster.Announce(broadcast.EntityUnit, broadcast.ActionDeleted)
	return nil
}
