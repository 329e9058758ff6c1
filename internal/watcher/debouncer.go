package watcher

import (
	"context"
	"time"
)

// Debouncer coalesces events per path. A batch is flushed once no event has
// arrived for window, or as soon as maxBatch distinct paths are pending.
// Flushes run on the goroutine calling Run, one at a time.
type Debouncer struct {
	window   time.Duration
	maxBatch int
}

func NewDebouncer(window time.Duration, maxBatch int) *Debouncer {
	if maxBatch < 1 {
		maxBatch = 1
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
	}
}

// Run consumes in until it is closed or ctx is done. Pending events are
// flushed when in closes and dropped when ctx is cancelled.
func (d *Debouncer) Run(ctx context.Context, in <-chan FileEvent, flush func([]FileEvent)) {
	pending := make(map[string]FileEvent)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}
	emit := func() {
		stopTimer()
		if len(pending) == 0 {
			return
		}
		batch := make([]FileEvent, 0, len(pending))
		for _, event := range pending {
			batch = append(batch, event)
		}
		pending = make(map[string]FileEvent)
		flush(batch)
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-in:
			if !ok {
				emit()
				return
			}

			pending[event.Path] = event
			if len(pending) >= d.maxBatch {
				emit()
				continue
			}

			stopTimer()
			timer = time.NewTimer(d.window)
			timerC = timer.C

		case <-timerC:
			timer = nil
			timerC = nil
			emit()
		}
	}
}
