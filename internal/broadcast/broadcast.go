// Package broadcast оповещает внешних подписчиков (например, UI) об изменении сущностей.
// Доставка не гарантируется: не более одного раза, без упорядочивания.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/resource-request-api/internal/worker"
)

// Сущности и действия, о которых сообщает сервис
const (
	EntityRequest      = "Request"
	EntityValidation   = "Validation"
	EntityResource     = "Resource"
	EntityNotification = "Notification"
	EntityEmployee     = "Employee"
	EntityUnit         = "Unit"

	ActionCreated  = "created"
	ActionModified = "modified"
	ActionDeleted  = "deleted"
)

// Event - сигнал «сущность X изменилась действием Y»
type Event struct {
	ID     string    `json:"id"`
	Entity string    `json:"model"`
	Action string    `json:"action"`
	At     time.Time `json:"at"`
}

// Publisher доставляет событие во внешний канал
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher публикует события через Redis PUBLISH
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher создаёт издателя для канала Redis
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

// LogPublisher пишет события в лог, когда Redis не настроен
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher создаёт издателя, пишущего в лог
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("change broadcast",
		slog.String("id", event.ID),
		slog.String("model", event.Entity),
		slog.String("action", event.Action),
	)
	return nil
}

// Broadcaster ставит публикации в outbox и никогда не блокирует вызывающего
type Broadcaster struct {
	publisher Publisher
	outbox    *worker.Outbox
	now       func() time.Time
}

// NewBroadcaster создаёт транслятор изменений
func NewBroadcaster(publisher Publisher, outbox *worker.Outbox) *Broadcaster {
	return &Broadcaster{
		publisher: publisher,
		outbox:    outbox,
		now:       time.Now,
	}
}

// Announce сообщает подписчикам об изменении сущности, не дожидаясь доставки
func (b *Broadcaster) Announce(entity, action string) {
	event := b.newEvent(entity, action)

	b.outbox.Enqueue(worker.Job{
		Name: "broadcast " + entity + " " + action,
		Run: func(ctx context.Context) error {
			return b.publisher.Publish(ctx, event)
		},
	})
}

// Send публикует событие синхронно; используется из фоновых задач outbox
func (b *Broadcaster) Send(ctx context.Context, entity, action string) error {
	return b.publisher.Publish(ctx, b.newEvent(entity, action))
}

func (b *Broadcaster) newEvent(entity, action string) Event {
	return Event{
		ID:     uuid.NewString(),
		Entity: entity,
		Action: action,
		At:     b.now().UTC(),
	}
}
