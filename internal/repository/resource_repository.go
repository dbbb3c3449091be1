package repository

import (
	"context"
	"time"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResourceRepository - реестр ресурсов: хранение и переходы состояния Libre -> Pend -> Pris.
// Переходы выполняются условным UPDATE; недопустимое исходное состояние - ErrInvalidTransition.
type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	// GetForUpdate блокирует строку ресурса до конца транзакции
	GetForUpdate(ctx context.Context, id int64) (*domain.Resource, error)
	GetByChiefID(ctx context.Context, chiefID int64) ([]domain.Resource, error)
	ResolveChief(ctx context.Context, id int64) (int64, error)
	MarkPending(ctx context.Context, id int64) error
	MarkHeld(ctx context.Context, id int64, holder string, attributedAt time.Time) error
	MarkFree(ctx context.Context, id int64) error
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository создаёт новый экземпляр репозитория
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	return translate(conn(ctx, r.db).Create(res).Error, nil, nil)
}

func (r *resourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	var res domain.Resource
	if err := conn(ctx, r.db).First(&res, id).Error; err != nil {
		return nil, translate(err, domain.ErrResourceNotFound, nil)
	}
	return &res, nil
}

func (r *resourceRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Resource, error) {
	var res domain.Resource
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&res, id).Error
	if err != nil {
		return nil, translate(err, domain.ErrResourceNotFound, nil)
	}
	return &res, nil
}

func (r *resourceRepository) GetByChiefID(ctx context.Context, chiefID int64) ([]domain.Resource, error) {
	var resources []domain.Resource
	err := conn(ctx, r.db).
		Where("chief_id = ?", chiefID).
		Order("id ASC").
		Find(&resources).Error
	return resources, translate(err, nil, nil)
}

func (r *resourceRepository) ResolveChief(ctx context.Context, id int64) (int64, error) {
	var chiefIDs []int64
	err := conn(ctx, r.db).
		Model(&domain.Resource{}).
		Where("id = ?", id).
		Pluck("chief_id", &chiefIDs).Error
	if err != nil {
		return 0, translate(err, nil, nil)
	}
	if len(chiefIDs) == 0 {
		return 0, domain.ErrResourceNotFound
	}
	return chiefIDs[0], nil
}

func (r *resourceRepository) MarkPending(ctx context.Context, id int64) error {
	return r.transition(ctx, id, []domain.ResourceState{domain.StateFree}, map[string]any{
		"state": domain.StatePending,
	})
}

func (r *resourceRepository) MarkHeld(ctx context.Context, id int64, holder string, attributedAt time.Time) error {
	return r.transition(ctx, id, []domain.ResourceState{domain.StateFree, domain.StatePending}, map[string]any{
		"state":            domain.StateHeld,
		"holder_matricule": holder,
		"attribution_date": attributedAt,
	})
}

func (r *resourceRepository) MarkFree(ctx context.Context, id int64) error {
	return r.transition(ctx, id, []domain.ResourceState{domain.StatePending, domain.StateHeld}, map[string]any{
		"state":            domain.StateFree,
		"holder_matricule": nil,
		"attribution_date": nil,
	})
}

func (r *resourceRepository) transition(ctx context.Context, id int64, from []domain.ResourceState, values map[string]any) error {
	result := conn(ctx, r.db).
		Model(&domain.Resource{}).
		Where("id = ? AND state IN ?", id, from).
		Updates(values)
	if result.Error != nil {
		return translate(result.Error, nil, nil)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidTransition
	}
	return nil
}
