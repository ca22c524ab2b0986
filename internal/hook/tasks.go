package hook

import (
	"errors"

	"github.com/TanaroSch/layout-switcher/internal/config"
	"github.com/TanaroSch/layout-switcher/internal/hotkey"
)

// ErrQueueFull is returned when the main loop is too far behind to accept
// another task.
var ErrQueueFull = errors.New("task queue full")

// TaskKind says what the main loop should do.
type TaskKind uint8

const (
	TaskAction TaskKind = iota + 1
	TaskAutoconvert
	TaskCaptured
)

func (k TaskKind) String() string {
	switch k {
	case TaskAction:
		return "action"
	case TaskAutoconvert:
		return "autoconvert"
	case TaskCaptured:
		return "captured"
	}
	return "unknown"
}

// Task is deferred work posted from the hook thread.
type Task struct {
	Kind    TaskKind
	Action  config.Action
	Capture hotkey.CaptureUpdate
}

// DefaultQueueSize is enough for a burst of fast typing while a conversion
// is being typed out.
const DefaultQueueSize = 64

// TaskQueue hands tasks from the hook to the main loop without blocking.
type TaskQueue struct {
	ch chan Task
}

// NewTaskQueue creates a queue holding up to size tasks.
func NewTaskQueue(size int) *TaskQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &TaskQueue{ch: make(chan Task, size)}
}

// Post enqueues t or fails with ErrQueueFull. It never blocks.
func (q *TaskQueue) Post(t Task) error {
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Tasks is drained by the main loop.
func (q *TaskQueue) Tasks() <-chan Task { return q.ch }
