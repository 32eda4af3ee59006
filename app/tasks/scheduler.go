package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chriskh369/studyhub-agent/app/cfg"
	"github.com/chriskh369/studyhub-agent/app/database"
	"github.com/chriskh369/studyhub-agent/app/notify"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the periodic pipeline. A single worker executes tasks and
// enqueues are coalesced per task type, so one pipeline run can never overlap
// another - the ledger flush of run N always settles before run N+1 starts.
type Scheduler struct {
	source         CalendarSource
	ledger         database.LedgerRepository
	sinks          notify.Deliverer
	status         *Status
	interval       time.Duration
	updateInterval time.Duration
	retentionDays  int
	buildNumber    int
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	taskQueue      chan TaskInterface
	mu             sync.Mutex
	inflight       map[TaskType]bool
}

func NewScheduler(source CalendarSource, ledger database.LedgerRepository,
	sinks notify.Deliverer, status *Status) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		source:         source,
		ledger:         ledger,
		sinks:          sinks,
		status:         status,
		interval:       time.Duration(cfg.PollInterval) * time.Second,
		updateInterval: time.Duration(cfg.UpdateCheckInterval) * time.Second,
		retentionDays:  cfg.RetentionDays,
		buildNumber:    cfg.BuildNumber,
		ctx:            ctx,
		cancel:         cancel,
		taskQueue:      make(chan TaskInterface, 16),
		inflight:       make(map[TaskType]bool),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.worker()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		pollTicker := time.NewTicker(s.interval)
		defer pollTicker.Stop()
		updateTicker := time.NewTicker(s.updateInterval)
		defer updateTicker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-pollTicker.C:
				if err := s.EnqueueTask(s.newProcessCalendarTask()); err != nil {
					slog.Warn("Failed to enqueue ProcessCalendarTask", "error", err)
				}
			case <-updateTicker.C:
				if err := s.EnqueueTask(s.newCheckUpdateTask()); err != nil {
					slog.Warn("Failed to enqueue CheckUpdateTask", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

// TriggerRefresh enqueues an immediate pipeline run. A run already queued or
// executing absorbs the request.
func (s *Scheduler) TriggerRefresh() error {
	return s.EnqueueTask(s.newProcessCalendarTask())
}

// EnqueueTask submits a task for execution. If a task of the same type is
// already queued or running, the new one is coalesced into it and dropped.
func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	s.mu.Lock()
	if s.inflight[task.GetType()] {
		s.mu.Unlock()
		slog.Debug("Task already in flight, coalescing", "type", string(task.GetType()))
		return nil
	}
	s.inflight[task.GetType()] = true
	s.mu.Unlock()

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		s.clearInflight(task.GetType())
		return s.ctx.Err()
	default:
		s.clearInflight(task.GetType())
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	if err := s.EnqueueTask(s.newProcessCalendarTask()); err != nil {
		slog.Warn("Failed to enqueue startup ProcessCalendarTask", "error", err)
	}
	if err := s.EnqueueTask(s.newCheckUpdateTask()); err != nil {
		slog.Warn("Failed to enqueue startup CheckUpdateTask", "error", err)
	}
}

func (s *Scheduler) newProcessCalendarTask() *ProcessCalendarTask {
	return NewProcessCalendarTask(s.source, s.ledger, s.sinks, s.status, s.retentionDays, nil)
}

func (s *Scheduler) newCheckUpdateTask() *CheckUpdateTask {
	return NewCheckUpdateTask(s.source, s.status, s.buildNumber)
}

func (s *Scheduler) clearInflight(taskType TaskType) {
	s.mu.Lock()
	delete(s.inflight, taskType)
	s.mu.Unlock()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.clearInflight(task.GetType())
		return
	}

	slog.Error("Task execution failed", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		if task.GetType() == TaskTypeProcessCalendar {
			s.status.RecordFailure(time.Now(), err)
		}
		s.clearInflight(task.GetType())
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	// The inflight slot stays held across the retry so a ticker firing during
	// the backoff coalesces instead of starting a parallel run.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			s.clearInflight(task.GetType())
			return
		case <-time.After(retryDelay):
		}

		select {
		case s.taskQueue <- task:
		case <-s.ctx.Done():
			s.clearInflight(task.GetType())
		}
	}()
}
