package service_test

import (
	"context"
	"sync"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
	"github.com/resource-request-api/internal/service"
)

// collidingEmployeeRepo имитирует параллельную транзакцию, успевшую занять матрикул
type collidingEmployeeRepo struct {
	repository.EmployeeRepository

	mu         sync.Mutex
	collisions int
}

func (r *collidingEmployeeRepo) Create(ctx context.Context, emp *domain.Employee) error {
	r.mu.Lock()
	if r.collisions > 0 {
		r.collisions--
		r.mu.Unlock()
		return domain.ErrMatriculeTaken
	}
	r.mu.Unlock()
	return r.EmployeeRepository.Create(ctx, emp)
}

func (s *ServiceSuite) seedPosition(title string) *domain.Position {
	unit, err := s.units.Create(s.ctx, &dto.CreateUnitRequest{Type: "department", Title: "Ops"})
	s.Require().NoError(err)
	pos, err := s.positions.Create(s.ctx, unit.ID, &dto.CreatePositionRequest{Title: title})
	s.Require().NoError(err)
	return pos
}

func (s *ServiceSuite) TestEmployeeCreate_AssignsSequentialMatricules() {
	first := s.seedEmployee("Doe", "2024-01-15")
	second := s.seedEmployee("Roe", "2024-11-30")
	other := s.seedEmployee("Poe", "2023-03-01")

	s.Equal("2024-001", first.Matricule)
	s.Equal("2024-002", second.Matricule)
	s.Equal("2023-001", other.Matricule)
	s.Equal(domain.EmployeeActive, first.Status)

	s.flush()
	s.Equal(3, s.publisher.count(broadcast.EntityEmployee, broadcast.ActionCreated))
}

func (s *ServiceSuite) TestEmployeeCreate_InvalidEntryDate() {
	_, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "15.01.2024"})
	s.ErrorIs(err, domain.ErrValidation)
}

func (s *ServiceSuite) TestEmployeeCreate_Concurrent() {
	const workers = 10

	var wg sync.WaitGroup
	matricules := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emp, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2025-06-01"})
			if err == nil {
				matricules <- emp.Matricule
			}
		}()
	}
	wg.Wait()
	close(matricules)

	seen := make(map[string]bool)
	for m := range matricules {
		s.False(seen[m], "duplicate matricule %s", m)
		seen[m] = true
	}
	s.Len(seen, workers)
	s.True(seen["2025-001"])
	s.True(seen["2025-010"])
}

func (s *ServiceSuite) TestEmployeeCreate_RetriesOnCollision() {
	repo := &collidingEmployeeRepo{EmployeeRepository: s.repo.employees, collisions: 2}
	employees := service.NewEmployeeService(s.txm, repo, s.repo.positions, s.repo.users, s.broadcaster, s.logger, 3)

	emp, err := employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15"})
	s.Require().NoError(err)
	s.Equal("2024-001", emp.Matricule)
}

func (s *ServiceSuite) TestEmployeeCreate_GivesUpAfterMaxAttempts() {
	repo := &collidingEmployeeRepo{EmployeeRepository: s.repo.employees, collisions: 10}
	employees := service.NewEmployeeService(s.txm, repo, s.repo.positions, s.repo.users, s.broadcaster, s.logger, 3)

	_, err := employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15"})
	s.ErrorIs(err, domain.ErrMatriculeContention)
	s.ErrorIs(err, domain.ErrConflict)
	s.Equal(7, repo.collisions)
}

func (s *ServiceSuite) TestEmployeeCreate_OccupiedPositionKeepsSequence() {
	pos := s.seedPosition("Engineer")

	first, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15", PositionID: &pos.ID})
	s.Require().NoError(err)
	s.Equal("2024-001", first.Matricule)

	_, err = s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Roe", FirstName: "Jane", EntryDate: "2024-02-15", PositionID: &pos.ID})
	s.ErrorIs(err, domain.ErrPositionOccupied)

	// Откат транзакции не должен оставлять пропуск в нумерации
	next := s.seedEmployee("Poe", "2024-03-01")
	s.Equal("2024-002", next.Matricule)
}

func (s *ServiceSuite) TestEmployeeCreate_UserLink() {
	user := s.seedUser("jdoe", domain.RoleRecruit)

	_, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15", UserID: &user.ID})
	s.Require().NoError(err)

	_, err = s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Roe", FirstName: "Jane", EntryDate: "2024-01-15", UserID: &user.ID})
	s.ErrorIs(err, domain.ErrUserAlreadyLinked)

	missing := int64(999)
	_, err = s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Roe", FirstName: "Jane", EntryDate: "2024-01-15", UserID: &missing})
	s.ErrorIs(err, domain.ErrUserNotFound)
}

func (s *ServiceSuite) TestEmployeeCreate_UnknownSuperior() {
	_, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{
		Name: "Doe", FirstName: "John", EntryDate: "2024-01-15", SuperiorMatricule: ptr("2024-999"),
	})
	s.ErrorIs(err, domain.ErrSuperiorNotFound)
}

func (s *ServiceSuite) TestEmployeeUpdate_SuperiorChecks() {
	boss := s.seedEmployee("Boss", "2024-01-01")
	mid, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Mid", FirstName: "M", EntryDate: "2024-01-02", SuperiorMatricule: &boss.Matricule})
	s.Require().NoError(err)
	low, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Low", FirstName: "L", EntryDate: "2024-01-03", SuperiorMatricule: &mid.Matricule})
	s.Require().NoError(err)

	_, err = s.employees.Update(s.ctx, boss.Matricule, &dto.UpdateEmployeeRequest{SuperiorMatricule: &boss.Matricule})
	s.ErrorIs(err, domain.ErrSelfSuperior)

	_, err = s.employees.Update(s.ctx, boss.Matricule, &dto.UpdateEmployeeRequest{SuperiorMatricule: &low.Matricule})
	s.ErrorIs(err, domain.ErrCyclicSuperior)

	_, err = s.employees.Update(s.ctx, boss.Matricule, &dto.UpdateEmployeeRequest{SuperiorMatricule: ptr("2024-999")})
	s.ErrorIs(err, domain.ErrSuperiorNotFound)

	updated, err := s.employees.Update(s.ctx, low.Matricule, &dto.UpdateEmployeeRequest{SuperiorMatricule: &boss.Matricule, Name: ptr(" Lower ")})
	s.Require().NoError(err)
	s.Equal("Lower", updated.Name)
	s.Equal(boss.Matricule, *updated.SuperiorMatricule)
}

func (s *ServiceSuite) TestEmployeeUpdate_MovesPosition() {
	from := s.seedPosition("Engineer")
	to, err := s.positions.Create(s.ctx, from.UnitID, &dto.CreatePositionRequest{Title: "Lead"})
	s.Require().NoError(err)

	emp, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15", PositionID: &from.ID})
	s.Require().NoError(err)

	updated, err := s.employees.Update(s.ctx, emp.Matricule, &dto.UpdateEmployeeRequest{PositionID: &to.ID})
	s.Require().NoError(err)
	s.Equal(to.ID, *updated.PositionID)

	oldPos, err := s.repo.positions.GetByID(s.ctx, from.ID)
	s.Require().NoError(err)
	s.True(oldPos.IsAvailable)
	newPos, err := s.repo.positions.GetByID(s.ctx, to.ID)
	s.Require().NoError(err)
	s.False(newPos.IsAvailable)
}

func (s *ServiceSuite) TestEmployeeDisable_FreesPosition() {
	pos := s.seedPosition("Engineer")
	emp, err := s.employees.Create(s.ctx, &dto.CreateEmployeeRequest{Name: "Doe", FirstName: "John", EntryDate: "2024-01-15", PositionID: &pos.ID, IsEquipped: true})
	s.Require().NoError(err)

	disabled, err := s.employees.Disable(s.ctx, emp.Matricule)
	s.Require().NoError(err)
	s.Equal(domain.EmployeeDisabled, disabled.Status)
	s.Nil(disabled.PositionID)
	s.False(disabled.IsEquipped)

	freed, err := s.repo.positions.GetByID(s.ctx, pos.ID)
	s.Require().NoError(err)
	s.True(freed.IsAvailable)

	again, err := s.employees.Disable(s.ctx, emp.Matricule)
	s.Require().NoError(err)
	s.Equal(domain.EmployeeDisabled, again.Status)

	_, err = s.employees.Update(s.ctx, emp.Matricule, &dto.UpdateEmployeeRequest{Name: ptr("Other")})
	s.ErrorIs(err, domain.ErrEmployeeDisabled)
}

func (s *ServiceSuite) TestUserCreate() {
	emp := s.seedEmployee("Doe", "2024-01-15")
	chief := s.seedUser("chief", domain.RoleUnitChief)

	user, err := s.users.Create(s.ctx, &dto.CreateUserRequest{Username: "jdoe", Role: string(domain.RoleRecruit), Matricule: &emp.Matricule, SuperiorID: &chief.ID})
	s.Require().NoError(err)
	s.Equal(emp.Matricule, *user.Matricule)

	_, err = s.users.Create(s.ctx, &dto.CreateUserRequest{Username: "jdoe", Role: string(domain.RoleRecruit)})
	s.ErrorIs(err, domain.ErrDuplicateUsername)

	_, err = s.users.Create(s.ctx, &dto.CreateUserRequest{Username: "ghost", Role: string(domain.RoleRecruit), Matricule: ptr("2024-999")})
	s.ErrorIs(err, domain.ErrEmployeeNotFound)

	_, err = s.users.Create(s.ctx, &dto.CreateUserRequest{Username: "orphan", Role: string(domain.RoleRecruit), SuperiorID: ptr(int64(999))})
	s.ErrorIs(err, domain.ErrSuperiorNotFound)
}
