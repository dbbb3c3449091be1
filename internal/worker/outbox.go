// Package worker исполняет побочные эффекты (уведомления, трансляции изменений)
// асинхронно по отношению к вызывающему: постановка в очередь не блокирует,
// сбой задачи логируется и не влияет на основную операцию.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job - единица фоновой работы
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outbox - ограниченная очередь задач с пулом обработчиков
type Outbox struct {
	jobs       chan Job
	logger     *slog.Logger
	workers    int
	jobTimeout time.Duration

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewOutbox создаёт очередь; workers < 1 приводится к одному обработчику
func NewOutbox(logger *slog.Logger, workers, buffer int) *Outbox {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Outbox{
		jobs:       make(chan Job, buffer),
		logger:     logger,
		workers:    workers,
		jobTimeout: 10 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start запускает обработчики
func (o *Outbox) Start() {
	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.run(i)
	}
	o.logger.Info("outbox started", slog.Int("workers", o.workers))
}

// Enqueue ставит задачу в очередь без ожидания.
// Возвращает false, если очередь переполнена или закрыта; задача при этом отбрасывается.
func (o *Outbox) Enqueue(job Job) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.closed {
		o.logger.Warn("outbox closed, job dropped", slog.String("job", job.Name))
		return false
	}

	select {
	case o.jobs <- job:
		return true
	default:
		o.logger.Warn("outbox full, job dropped", slog.String("job", job.Name))
		return false
	}
}

// Close прекращает приём задач, дожидается обработки очереди и останавливает обработчики
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.jobs)
	o.mu.Unlock()

	o.wg.Wait()
	o.cancel()
}

func (o *Outbox) run(id int) {
	defer o.wg.Done()
	for job := range o.jobs {
		o.execute(id, job)
	}
}

func (o *Outbox) execute(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("outbox job panicked",
				slog.String("job", job.Name),
				slog.Int("worker", id),
				slog.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(o.ctx, o.jobTimeout)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		o.logger.Error("outbox job failed",
			slog.String("job", job.Name),
			slog.Int("worker", id),
			slog.Any("error", err),
		)
	}
}
