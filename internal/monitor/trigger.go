package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colortrig/colortrig/internal/trace"
)

// ActionSink performs the key action for an accepted trigger.
type ActionSink interface {
	Press(key string) error
}

// Trigger enforces the cooldown between actions and schedules delayed
// key presses off the sampling loop.
type Trigger struct {
	sink ActionSink

	mu          sync.Mutex
	lastTrigger time.Time

	count atomic.Int64
	wg    sync.WaitGroup
}

// NewTrigger creates a trigger bound to an action sink.
func NewTrigger(sink ActionSink) *Trigger {
	return &Trigger{sink: sink}
}

// Invoke applies the cooldown gate and fires the key action. The
// last-trigger timestamp advances immediately on acceptance, before
// any delay, so a burst of invocations cannot all pass the gate.
// With delay > 0 the press runs on its own execution unit and Invoke
// returns without waiting for it. Returns true if accepted.
func (t *Trigger) Invoke(key string, cooldown, delay time.Duration) bool {
	t.mu.Lock()
	if !t.lastTrigger.IsZero() && time.Since(t.lastTrigger) < cooldown {
		t.mu.Unlock()
		return false
	}
	t.lastTrigger = time.Now()
	t.mu.Unlock()

	if delay > 0 {
		t.wg.Add(1)
		time.AfterFunc(delay, func() {
			defer t.wg.Done()
			t.fire(key)
		})
		return true
	}

	t.fire(key)
	return true
}

// fire executes the press and counts it. The counter reflects actions
// taken, not invocations accepted: it advances at fire time, and only
// when the sink call succeeded.
func (t *Trigger) fire(key string) {
	ctx, span := trace.StartSpan(context.Background(), "trigger_press")
	defer span.End()
	span.SetAttr("key", key)

	log := trace.Logger(ctx)
	if err := t.sink.Press(key); err != nil {
		span.SetAttr("error", err.Error())
		log.Error("key press failed", "key", key, "error", err)
		return
	}
	log.Info("key pressed", "key", key, "total", t.count.Add(1))
}

// Count returns the number of key actions actually executed.
func (t *Trigger) Count() int64 {
	return t.count.Load()
}

// LastTriggerMillis returns the last accepted trigger time as Unix
// milliseconds, 0 if nothing has triggered yet.
func (t *Trigger) LastTriggerMillis() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastTrigger.IsZero() {
		return 0
	}
	return t.lastTrigger.UnixMilli()
}

// Wait blocks until all scheduled delayed actions have fired.
func (t *Trigger) Wait() {
	t.wg.Wait()
}
