package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

// EmployeeService определяет интерфейс бизнес-логики для сотрудников
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error)
	GetByMatricule(ctx context.Context, matricule string) (*domain.Employee, error)
	Update(ctx context.Context, matricule string, req *dto.UpdateEmployeeRequest) (*domain.Employee, error)
	Disable(ctx context.Context, matricule string) (*domain.Employee, error)
}

type employeeService struct {
	txManager   repository.TxManager
	empRepo     repository.EmployeeRepository
	posRepo     repository.PositionRepository
	userRepo    repository.UserRepository
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
	maxAttempts int
}

// NewEmployeeService создаёт новый экземпляр сервиса.
// maxAttempts ограничивает повторы выдачи матрикула при конфликте вставки.
func NewEmployeeService(
	txManager repository.TxManager,
	empRepo repository.EmployeeRepository,
	posRepo repository.PositionRepository,
	userRepo repository.UserRepository,
	broadcaster *broadcast.Broadcaster,
	logger *slog.Logger,
	maxAttempts int,
) EmployeeService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &employeeService{
		txManager:   txManager,
		empRepo:     empRepo,
		posRepo:     posRepo,
		userRepo:    userRepo,
		broadcaster: broadcaster,
		logger:      logger,
		maxAttempts: maxAttempts,
	}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest) (*domain.Employee, error) {
	entryDate, err := time.Parse(dateLayout, req.EntryDate)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid entry_date: %v", err))
	}

	// Выдача матрикула и вставка повторяются целиком, если параллельная транзакция заняла номер
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		emp, err := s.createOnce(ctx, req, entryDate)
		if errors.Is(err, domain.ErrMatriculeTaken) {
			s.logger.Warn("matricule collision, retrying",
				slog.Int("year", entryDate.Year()),
				slog.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.broadcaster.Announce(broadcast.EntityEmployee, broadcast.ActionCreated)
		return emp, nil
	}

	return nil, domain.ErrMatriculeContention
}

func (s *employeeService) createOnce(ctx context.Context, req *dto.CreateEmployeeRequest, entryDate time.Time) (*domain.Employee, error) {
	emp := &domain.Employee{
		PositionID:        req.PositionID,
		UserID:            req.UserID,
		Name:              strings.TrimSpace(req.Name),
		FirstName:         strings.TrimSpace(req.FirstName),
		IsEquipped:        req.IsEquipped,
		Status:            domain.EmployeeActive,
		EntryDate:         entryDate,
		SuperiorMatricule: req.SuperiorMatricule,
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// Проверяем существование руководителя
		if emp.SuperiorMatricule != nil {
			if _, err := s.empRepo.GetByMatricule(ctx, *emp.SuperiorMatricule); err != nil {
				if errors.Is(err, domain.ErrEmployeeNotFound) {
					return domain.ErrSuperiorNotFound
				}
				return err
			}
		}

		if emp.UserID != nil {
			if err := s.checkUserLink(ctx, *emp.UserID, ""); err != nil {
				return err
			}
		}

		// Должность занимается в той же транзакции, что и создание сотрудника
		if emp.PositionID != nil {
			if err := s.posRepo.Occupy(ctx, *emp.PositionID); err != nil {
				return err
			}
		}

		m, err := s.empRepo.NextMatricule(ctx, entryDate.Year())
		if err != nil {
			return err
		}
		emp.Matricule = m

		return s.empRepo.Create(ctx, emp)
	})
	if err != nil {
		return nil, err
	}

	return emp, nil
}

func (s *employeeService) checkUserLink(ctx context.Context, userID int64, matricule string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	linked, err := s.empRepo.ExistsByUserID(ctx, userID, matricule)
	if err != nil {
		return err
	}
	if linked {
		return domain.ErrUserAlreadyLinked
	}
	return nil
}

func (s *employeeService) GetByMatricule(ctx context.Context, matricule string) (*domain.Employee, error) {
	return s.empRepo.GetByMatricule(ctx, matricule)
}

func (s *employeeService) Update(ctx context.Context, matricule string, req *dto.UpdateEmployeeRequest) (*domain.Employee, error) {
	var emp *domain.Employee

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		emp, err = s.empRepo.GetByMatricule(ctx, matricule)
		if err != nil {
			return err
		}
		if emp.Status == domain.EmployeeDisabled {
			return domain.ErrEmployeeDisabled
		}

		if req.Name != nil {
			emp.Name = strings.TrimSpace(*req.Name)
		}
		if req.FirstName != nil {
			emp.FirstName = strings.TrimSpace(*req.FirstName)
		}
		if req.IsEquipped != nil {
			emp.IsEquipped = *req.IsEquipped
		}

		if req.SuperiorMatricule != nil {
			superior := *req.SuperiorMatricule
			if err := s.checkSuperior(ctx, emp.Matricule, superior); err != nil {
				return err
			}
			emp.SuperiorMatricule = &superior
		}

		// Смена должности: новая занимается, прежняя освобождается
		if req.PositionID != nil && (emp.PositionID == nil || *emp.PositionID != *req.PositionID) {
			if err := s.posRepo.Occupy(ctx, *req.PositionID); err != nil {
				return err
			}
			if emp.PositionID != nil {
				if err := s.posRepo.Vacate(ctx, *emp.PositionID); err != nil {
					return err
				}
			}
			newPositionID := *req.PositionID
			emp.PositionID = &newPositionID
		}

		return s.empRepo.Update(ctx, emp)
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityEmployee, broadcast.ActionModified)
	return emp, nil
}

// checkSuperior запрещает назначать руководителем себя или собственного подчинённого
func (s *employeeService) checkSuperior(ctx context.Context, matricule, superior string) error {
	if superior == matricule {
		return domain.ErrSelfSuperior
	}

	visited := map[string]bool{matricule: true, superior: true}
	current := superior
	for {
		sup, err := s.empRepo.GetByMatricule(ctx, current)
		if err != nil {
			if errors.Is(err, domain.ErrEmployeeNotFound) && current == superior {
				return domain.ErrSuperiorNotFound
			}
			return err
		}

		if sup.SuperiorMatricule == nil {
			return nil
		}
		next := *sup.SuperiorMatricule
		if visited[next] {
			return domain.ErrCyclicSuperior
		}
		visited[next] = true
		current = next
	}
}

func (s *employeeService) Disable(ctx context.Context, matricule string) (*domain.Employee, error) {
	var emp *domain.Employee

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		emp, err = s.empRepo.GetByMatricule(ctx, matricule)
		if err != nil {
			return err
		}
		if emp.Status == domain.EmployeeDisabled {
			return nil
		}

		if emp.PositionID != nil {
			if err := s.posRepo.Vacate(ctx, *emp.PositionID); err != nil {
				return err
			}
			emp.PositionID = nil
		}

		emp.Status = domain.EmployeeDisabled
		emp.IsEquipped = false
		return s.empRepo.Update(ctx, emp)
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Announce(broadcast.EntityEmployee, broadcast.ActionModified)
	return emp, nil
}
