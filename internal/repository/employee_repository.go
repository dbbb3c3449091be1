package repository

import (
	"context"
	"errors"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/matricule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// matriculeLockSpace отделяет advisory-блокировки матрикулов от прочих ключей
const matriculeLockSpace int64 = 0x4d41_5452 << 32

// EmployeeRepository определяет интерфейс для работы с сотрудниками
type EmployeeRepository interface {
	// NextMatricule блокирует последовательность года до конца транзакции
	// и возвращает следующий свободный матрикул. Вызывать только внутри TxManager.Do.
	NextMatricule(ctx context.Context, year int) (string, error)
	// Create вставляет сотрудника; занятый матрикул - ErrMatriculeTaken
	Create(ctx context.Context, emp *domain.Employee) error
	GetByMatricule(ctx context.Context, m string) (*domain.Employee, error)
	Update(ctx context.Context, emp *domain.Employee) error
	ExistsByUserID(ctx context.Context, userID int64, excludeMatricule string) (bool, error)
}

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository создаёт новый экземпляр репозитория
func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) NextMatricule(ctx context.Context, year int) (string, error) {
	db := conn(ctx, r.db)

	// В PostgreSQL сериализуем выдачу в пределах года, даже когда строк ещё нет.
	// SQLite допускает только одного писателя, отдельная блокировка не нужна.
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT pg_advisory_xact_lock(?)", matriculeLockSpace|int64(year)).Error; err != nil {
			return "", translate(err, nil, nil)
		}
	}

	var last []string
	err := db.Model(&domain.Employee{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("matricule LIKE ?", matricule.Prefix(year)+"%").
		Order("matricule DESC").
		Limit(1).
		Pluck("matricule", &last).Error
	if err != nil {
		return "", translate(err, nil, nil)
	}

	var prev string
	if len(last) > 0 {
		prev = last[0]
	}

	next, err := matricule.Next(year, prev)
	if err != nil {
		if errors.Is(err, matricule.ErrOverflow) {
			return "", domain.ErrMatriculeExhausted
		}
		return "", domain.NewStorageError(err)
	}
	return next, nil
}

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	return translate(conn(ctx, r.db).Create(emp).Error, nil, domain.ErrMatriculeTaken)
}

func (r *employeeRepository) GetByMatricule(ctx context.Context, m string) (*domain.Employee, error) {
	var emp domain.Employee
	if err := conn(ctx, r.db).Where("matricule = ?", m).First(&emp).Error; err != nil {
		return nil, translate(err, domain.ErrEmployeeNotFound, nil)
	}
	return &emp, nil
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	return translate(conn(ctx, r.db).Save(emp).Error, nil, domain.ErrUserAlreadyLinked)
}

func (r *employeeRepository) ExistsByUserID(ctx context.Context, userID int64, excludeMatricule string) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&domain.Employee{}).Where("user_id = ?", userID)
	if excludeMatricule != "" {
		query = query.Where("matricule <> ?", excludeMatricule)
	}
	err := query.Count(&count).Error
	return count > 0, translate(err, nil, nil)
}
