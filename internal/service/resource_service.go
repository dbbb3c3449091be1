package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

// ResourceService определяет интерфейс работы с реестром ресурсов
type ResourceService interface {
	Create(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error)
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	GetByChiefID(ctx context.Context, chiefID int64) ([]domain.Resource, error)
	// Release возвращает выданный ресурс в свободные
	Release(ctx context.Context, id int64) (*domain.Resource, error)
}

type resourceService struct {
	txManager     repository.TxManager
	resourceRepo  repository.ResourceRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	broadcaster   *broadcast.Broadcaster
}

// NewResourceService создаёт новый экземпляр сервиса
func NewResourceService(
	txManager repository.TxManager,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	broadcaster *broadcast.Broadcaster,
) ResourceService {
	return &resourceService{
		txManager:     txManager,
		resourceRepo:  resourceRepo,
		userRepo:      userRepo,
		notifications: notifications,
		broadcaster:   broadcaster,
	}
}

func (s *resourceService) Create(ctx context.Context, req *dto.CreateResourceRequest) (*domain.Resource, error) {
	if _, err := s.userRepo.GetByID(ctx, req.ChiefID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrChiefNotFound
		}
		return nil, err
	}

	res := &domain.Resource{
		Label:       strings.TrimSpace(req.Label),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		State:       domain.StateFree,
		ChiefID:     req.ChiefID,
	}

	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityResource, broadcast.ActionCreated)
	return res, nil
}

func (s *resourceService) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	return s.resourceRepo.GetByID(ctx, id)
}

func (s *resourceService) GetByChiefID(ctx context.Context, chiefID int64) ([]domain.Resource, error) {
	if _, err := s.userRepo.GetByID(ctx, chiefID); err != nil {
		return nil, err
	}

	return s.resourceRepo.GetByChiefID(ctx, chiefID)
}

func (s *resourceService) Release(ctx context.Context, id int64) (*domain.Resource, error) {
	var (
		res    *domain.Resource
		holder string
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.resourceRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if res.State != domain.StateHeld {
			return domain.ErrResourceNotHeld
		}
		if res.HolderMatricule != nil {
			holder = *res.HolderMatricule
		}

		if err := s.resourceRepo.MarkFree(ctx, id); err != nil {
			return err
		}

		res, err = s.resourceRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifications.Notify(Notice{
		UserID:    res.ChiefID,
		EventType: domain.EventResource,
		Message:   fmt.Sprintf("Resource %d returned by %s", res.ID, holder),
		Data: map[string]any{
			"resource_id": res.ID,
			"holder":      holder,
			"state":       string(res.State),
		},
	})
	s.broadcaster.Announce(broadcast.EntityResource, broadcast.ActionModified)

	return res, nil
}
