package apiservice

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wurt83ow/workreport/internal/models"
	"github.com/wurt83ow/workreport/internal/workerpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type External interface {
	SendNotification(models.Event) error
}

type Log interface {
	Info(string, ...zapcore.Field)
}

type Pool interface {
	AddTask(task *workerpool.Task)
}

// ApiService buffers transition events and hands them to the worker pool,
// which delivers them to the notification dispatcher in the background.
type ApiService struct {
	events       chan models.Event
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
	external     External
	pool         Pool
	log          Log
	taskInterval int
}

func NewApiService(external External, pool Pool, log Log, taskInterval func() string) *ApiService {
	taskInt, err := strconv.Atoi(taskInterval())
	if err != nil {
		log.Info("cannot convert option 'TaskExecutionInterval': ", zap.Error(err))

		taskInt = 3000
	}

	return &ApiService{
		events:       make(chan models.Event, 1000),
		wg:           sync.WaitGroup{},
		cancelFunc:   nil,
		external:     external,
		pool:         pool,
		log:          log,
		taskInterval: taskInt,
	}
}

// Start launches the background dispatch loop.
func (a *ApiService) Start() {
	ctx := context.Background()
	ctx, cancelFunc := context.WithCancel(ctx)
	a.cancelFunc = cancelFunc
	a.wg.Add(1)

	go a.DispatchEvents(ctx)
}

func (a *ApiService) Stop() {
	a.cancelFunc()
	a.wg.Wait()
}

// Emit queues one transition event for delivery. Emission never blocks the
// write path; if the buffer is full the event is dropped with a log entry.
func (a *ApiService) Emit(event models.Event) {
	select {
	case a.events <- event:
	default:
		a.log.Info("event buffer full, dropping event: ", zap.String("type", event.Type))
	}
}

// DispatchEvents accumulates emitted events and flushes them into the pool
// on every tick.
func (a *ApiService) DispatchEvents(ctx context.Context) {
	defer a.wg.Done()

	t := time.NewTicker(time.Duration(a.taskInterval) * time.Millisecond)
	defer t.Stop()

	pending := make([]models.Event, 0)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-a.events:
			pending = append(pending, event)
		case <-t.C:
			if len(pending) != 0 {
				a.createNotifyTasks(pending)
				pending = nil
			}
		}
	}
}

func (a *ApiService) createNotifyTasks(events []models.Event) {
	for _, e := range events {
		event := e
		task := workerpool.NewTask(func(data interface{}) error {
			ev, ok := data.(models.Event)
			if ok {
				if err := a.external.SendNotification(ev); err != nil {
					return fmt.Errorf("failed to deliver event: %w", err)
				}

				a.log.Info("delivered event: ", zap.String("type", ev.Type))
			}

			return nil
		}, event)
		a.pool.AddTask(task)
	}
}
