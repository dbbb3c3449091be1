package repository

import (
	"context"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
)

// UnitRepository определяет интерфейс для работы с подразделениями
type UnitRepository interface {
	Create(ctx context.Context, unit *domain.Unit) error
	GetByID(ctx context.Context, id int64) (*domain.Unit, error)
	GetByIDWithChildren(ctx context.Context, id int64, depth int, includePositions bool) (*domain.Unit, error)
	Update(ctx context.Context, unit *domain.Unit) error
	Delete(ctx context.Context, id int64) error
	IsDescendant(ctx context.Context, ancestorID, descendantID int64) (bool, error)
	GetAllDescendantIDs(ctx context.Context, id int64) ([]int64, error)
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository создаёт новый экземпляр репозитория
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

func (r *unitRepository) Create(ctx context.Context, unit *domain.Unit) error {
	return translate(conn(ctx, r.db).Create(unit).Error, nil, nil)
}

func (r *unitRepository) GetByID(ctx context.Context, id int64) (*domain.Unit, error) {
	var unit domain.Unit
	if err := conn(ctx, r.db).First(&unit, id).Error; err != nil {
		return nil, translate(err, domain.ErrUnitNotFound, nil)
	}
	return &unit, nil
}

func (r *unitRepository) GetByIDWithChildren(ctx context.Context, id int64, depth int, includePositions bool) (*domain.Unit, error) {
	var unit domain.Unit

	query := conn(ctx, r.db)
	if includePositions {
		query = query.Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}

	if err := query.First(&unit, id).Error; err != nil {
		return nil, translate(err, domain.ErrUnitNotFound, nil)
	}

	// Рекурсивно загружаем дочерние подразделения
	if depth > 0 {
		if err := r.loadChildren(ctx, &unit, depth, includePositions); err != nil {
			return nil, err
		}
	}

	return &unit, nil
}

func (r *unitRepository) loadChildren(ctx context.Context, unit *domain.Unit, depth int, includePositions bool) error {
	if depth <= 0 {
		return nil
	}

	query := conn(ctx, r.db).Where("parent_id = ?", unit.ID).Order("id ASC")
	if includePositions {
		query = query.Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})
	}

	var children []domain.Unit
	if err := query.Find(&children).Error; err != nil {
		return translate(err, nil, nil)
	}

	for i := range children {
		if err := r.loadChildren(ctx, &children[i], depth-1, includePositions); err != nil {
			return err
		}
	}

	unit.Children = children
	return nil
}

func (r *unitRepository) Update(ctx context.Context, unit *domain.Unit) error {
	return translate(conn(ctx, r.db).Save(unit).Error, nil, nil)
}

func (r *unitRepository) Delete(ctx context.Context, id int64) error {
	db := conn(ctx, r.db)

	// Удаляем поддерево явно: SQLite не применяет ON DELETE CASCADE без PRAGMA
	descendants, err := r.GetAllDescendantIDs(ctx, id)
	if err != nil {
		return err
	}
	ids := append(descendants, id)

	// Сотрудники удаляемых должностей остаются без должности
	positions := db.Model(&domain.Position{}).Select("id").Where("unit_id IN ?", ids)
	if err := db.Model(&domain.Employee{}).
		Where("position_id IN (?)", positions).
		Update("position_id", nil).Error; err != nil {
		return translate(err, nil, nil)
	}

	if err := db.Where("unit_id IN ?", ids).Delete(&domain.Position{}).Error; err != nil {
		return translate(err, nil, nil)
	}

	result := db.Where("id IN ?", ids).Delete(&domain.Unit{})
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		return domain.ErrUnitNotFound
	}
	return nil
}

func (r *unitRepository) IsDescendant(ctx context.Context, ancestorID, descendantID int64) (bool, error) {
	descendants, err := r.GetAllDescendantIDs(ctx, ancestorID)
	if err != nil {
		return false, err
	}

	for _, id := range descendants {
		if id == descendantID {
			return true, nil
		}
	}
	return false, nil
}

func (r *unitRepository) GetAllDescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	var result []int64

	// Рекурсивный CTE поддерживается и PostgreSQL, и SQLite
	query := `
		WITH RECURSIVE descendants AS (
			SELECT id FROM units WHERE parent_id = ?
			UNION ALL
			SELECT u.id FROM units u
			INNER JOIN descendants ds ON u.parent_id = ds.id
		)
		SELECT id FROM descendants
	`

	if err := conn(ctx, r.db).Raw(query, id).Scan(&result).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return result, nil
}
