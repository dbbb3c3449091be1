package service

import (
	"context"
	"errors"
	"strings"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

// UserService определяет интерфейс работы с учётными записями
type UserService interface {
	Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	empRepo  repository.EmployeeRepository
}

// NewUserService создаёт новый экземпляр сервиса
func NewUserService(userRepo repository.UserRepository, empRepo repository.EmployeeRepository) UserService {
	return &userService{
		userRepo: userRepo,
		empRepo:  empRepo,
	}
}

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*domain.User, error) {
	if req.Matricule != nil {
		if _, err := s.empRepo.GetByMatricule(ctx, *req.Matricule); err != nil {
			return nil, err
		}
	}

	if req.SuperiorID != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.SuperiorID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, domain.ErrSuperiorNotFound
			}
			return nil, err
		}
	}

	user := &domain.User{
		Username:   strings.TrimSpace(req.Username),
		Matricule:  req.Matricule,
		Role:       domain.Role(req.Role),
		SuperiorID: req.SuperiorID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
