package repository

import (
	"context"
	"errors"

	"github.com/resource-request-api/internal/domain"
	"gorm.io/gorm"
)

type txKey struct{}

// TxManager выполняет функцию внутри одной транзакции БД.
// Репозитории, вызванные с полученным контекстом, работают в этой транзакции.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager создаёт менеджер транзакций поверх GORM
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Вложенный вызов переиспользует уже открытую транзакцию
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn возвращает транзакцию из контекста или обычное соединение
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// translate приводит ошибки GORM к бизнес-ошибкам.
// notFound возвращается для gorm.ErrRecordNotFound, conflict - для нарушения уникальности.
func translate(err error, notFound, conflict error) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && conflict != nil:
		return conflict
	default:
		return domain.NewStorageError(err)
	}
}
