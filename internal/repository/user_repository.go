package repository

import (
	"context"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
)

// UserRepository определяет интерфейс для работы с учётными записями
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создаёт новый экземпляр репозитория
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(conn(ctx, r.db).Create(user).Error, nil, domain.ErrDuplicateUsername)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		return nil, translate(err, domain.ErrUserNotFound, nil)
	}
	return &user, nil
}
