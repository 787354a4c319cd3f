package telegram

import (
	"log/slog"
	"sync"
	"time"
)

// workerIdleTimeout is how long a chat worker lingers with an empty queue
// before shutting itself down.
const workerIdleTimeout = 2 * time.Minute

// dispatcher serializes event handling per chat. Each chat gets a lazily
// started worker goroutine draining a buffered queue, so overlapping events
// for one chat run in order while distinct chats stay fully parallel.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]chan func()
	logger *slog.Logger
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	return &dispatcher{
		queues: make(map[int64]chan func()),
		logger: logger,
	}
}

// dispatch enqueues fn on the chat's queue, starting a worker if needed.
// The non-blocking send happens under the lock so a worker can never shut
// down between the lookup and the send. When the queue is full the blocking
// send runs outside the lock, so one backlogged chat never stalls dispatch
// for the others; the worker cannot exit meanwhile because it only
// deregisters after seeing an empty queue.
func (d *dispatcher) dispatch(chatID int64, fn func()) {
	d.mu.Lock()
	q, ok := d.queues[chatID]
	if !ok {
		q = make(chan func(), 16)
		d.queues[chatID] = q
		go d.pump(chatID, q)
	}
	select {
	case q <- fn:
		d.mu.Unlock()
		return
	default:
	}
	d.mu.Unlock()

	q <- fn
}

// pump drains one chat's queue. On idle timeout it deregisters itself under
// the lock, rechecking the queue so a concurrently enqueued event is never
// stranded.
func (d *dispatcher) pump(chatID int64, q chan func()) {
	timer := time.NewTimer(workerIdleTimeout)
	defer timer.Stop()

	for {
		select {
		case fn := <-q:
			d.run(chatID, fn)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(workerIdleTimeout)
		case <-timer.C:
			d.mu.Lock()
			if len(q) == 0 {
				delete(d.queues, chatID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			timer.Reset(workerIdleTimeout)
		}
	}
}

func (d *dispatcher) run(chatID int64, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic while handling chat event", "chat_id", chatID, "panic", r)
		}
	}()
	fn()
}
