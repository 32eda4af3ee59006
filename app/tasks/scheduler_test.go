package tasks

import (
	"context"
	"errors"
	"testing"
	"time"
)

// stubTask is a minimal TaskInterface for scheduler tests.
type stubTask struct {
	Task
	executions int
	err        error
}

func newStubTask(taskType TaskType, err error) *stubTask {
	return &stubTask{Task: NewTask(taskType), err: err}
}

func (t *stubTask) Execute(ctx context.Context) error {
	t.executions++
	return t.err
}

func newTestScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		status:    NewStatus(),
		interval:  time.Hour,
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 16),
		inflight:  make(map[TaskType]bool),
	}
}

func TestScheduler_EnqueueTask_CoalescesSameType(t *testing.T) {
	s := newTestScheduler()
	defer s.cancel()

	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("First enqueue failed: %v", err)
	}
	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("Coalesced enqueue should not error: %v", err)
	}

	if len(s.taskQueue) != 1 {
		t.Errorf("Expected 1 queued task after coalescing, got %d", len(s.taskQueue))
	}
}

func TestScheduler_EnqueueTask_DifferentTypesDoNotCoalesce(t *testing.T) {
	s := newTestScheduler()
	defer s.cancel()

	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := s.EnqueueTask(newStubTask(TaskTypeCheckUpdate, nil)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if len(s.taskQueue) != 2 {
		t.Errorf("Expected 2 queued tasks, got %d", len(s.taskQueue))
	}
}

func TestScheduler_ExecuteTask_SuccessReleasesSlot(t *testing.T) {
	s := newTestScheduler()
	defer s.cancel()

	task := newStubTask(TaskTypeProcessCalendar, nil)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	s.executeTask(<-s.taskQueue)

	if task.executions != 1 {
		t.Errorf("Expected 1 execution, got %d", task.executions)
	}

	// The slot is free again, so a new task of the same type is accepted.
	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("Enqueue after completion failed: %v", err)
	}
	if len(s.taskQueue) != 1 {
		t.Errorf("Expected 1 queued task, got %d", len(s.taskQueue))
	}
}

func TestScheduler_ExecuteTask_FailureSchedulesRetryAndKeepsSlot(t *testing.T) {
	s := newTestScheduler()
	defer s.cancel()

	task := newStubTask(TaskTypeProcessCalendar, errors.New("boom"))
	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	s.executeTask(<-s.taskQueue)

	if task.GetRetryCount() != 1 {
		t.Errorf("Expected retry count 1, got %d", task.GetRetryCount())
	}

	// While the retry backoff is pending the slot stays held.
	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("Coalesced enqueue should not error: %v", err)
	}

	// First retry backoff is one second; the re-enqueued task shows up after.
	select {
	case got := <-s.taskQueue:
		if got.GetID() != task.GetID() {
			t.Error("Expected the failed task itself to be re-enqueued")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Retry task never re-enqueued")
	}
}

func TestScheduler_ExecuteTask_ExhaustedRetriesRecordFailure(t *testing.T) {
	s := newTestScheduler()
	defer s.cancel()

	task := newStubTask(TaskTypeProcessCalendar, errors.New("boom"))
	task.RetryCount = task.MaxRetries

	if err := s.EnqueueTask(task); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	s.executeTask(<-s.taskQueue)

	snapshot := s.status.Snapshot()
	if snapshot.LastRunOK {
		t.Error("Exhausted retries must record a failed run")
	}
	if snapshot.LastError == "" {
		t.Error("Expected the failure reason to be recorded")
	}

	// Slot released: the next cycle can run.
	if err := s.EnqueueTask(newStubTask(TaskTypeProcessCalendar, nil)); err != nil {
		t.Fatalf("Enqueue after final failure failed: %v", err)
	}
	if len(s.taskQueue) != 1 {
		t.Errorf("Expected 1 queued task, got %d", len(s.taskQueue))
	}
}
