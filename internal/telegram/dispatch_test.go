package telegram

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDispatchRunsInEnqueueOrder(t *testing.T) {
	d := newDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		d.dispatch(1, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 10
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		assert.Equal(t, i, v, "one chat's events must run in order")
	}
}

func TestBackloggedChatDoesNotBlockOtherChats(t *testing.T) {
	d := newDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Stall chat 1's worker, fill its queue to capacity, then park one more
	// enqueue in the blocking overflow path.
	release := make(chan struct{})
	d.dispatch(1, func() { <-release })
	for i := 0; i < 16; i++ {
		d.dispatch(1, func() {})
	}
	overflowDone := make(chan struct{})
	go func() {
		d.dispatch(1, func() {})
		close(overflowDone)
	}()
	time.Sleep(50 * time.Millisecond)

	// Another chat must still get through while chat 1 is saturated.
	ran := make(chan struct{})
	d.dispatch(2, func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch for an idle chat stalled behind a backlogged chat")
	}

	close(release)
	select {
	case <-overflowDone:
	case <-time.After(2 * time.Second):
		t.Fatal("overflow enqueue never completed after the backlog drained")
	}
}

func TestDispatchSurvivesPanic(t *testing.T) {
	d := newDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	done := make(chan struct{})
	d.dispatch(1, func() { panic("boom") })
	d.dispatch(1, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive the panic")
	}
}
