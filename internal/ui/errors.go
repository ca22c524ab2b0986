package ui

import (
	"fmt"
	"log/slog"
	"sync"
)

// Error titles shared by the components that report through the queue.
const (
	TitleUI      = "UI"
	TitleConfig  = "Config"
	TitleHook    = "Keyboard hook"
	TitleConvert = "Conversion"
)

// Error is one user-facing failure.
type Error struct {
	Title    string
	UserText string
	Detail   string
}

func (e Error) String() string {
	return fmt.Sprintf("%s: %s", e.Title, e.UserText)
}

// ErrorQueue collects failures from any goroutine, the hook thread included,
// until the main loop presents them. Push never blocks.
type ErrorQueue struct {
	mu     sync.Mutex
	items  []Error
	signal chan struct{}
}

// NewErrorQueue returns an empty queue.
func NewErrorQueue() *ErrorQueue {
	return &ErrorQueue{signal: make(chan struct{}, 1)}
}

// Push queues an error. A push identical in title and text to the last queued
// item is dropped so a repeating failure shows once.
func (q *ErrorQueue) Push(title, userText string, err error) {
	detail := ""
	if err != nil {
		detail = fmt.Sprintf("%+v", err)
	}

	q.mu.Lock()
	if n := len(q.items); n > 0 && q.items[n-1].Title == title && q.items[n-1].UserText == userText {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, Error{Title: title, UserText: userText, Detail: detail})
	q.mu.Unlock()

	slog.Debug("[ui] error queued", "title", title, "text", userText, "error", err)

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// Signal fires after a push. One signal may stand for several items; drain
// until Drain reports false.
func (q *ErrorQueue) Signal() <-chan struct{} { return q.signal }

// Drain pops the oldest error.
func (q *ErrorQueue) Drain() (Error, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Error{}, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	return e, true
}

// Len returns the number of queued errors.
func (q *ErrorQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
