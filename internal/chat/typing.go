package chat

import (
	"strings"
	"sync"
	"time"
)

const (
	// TypingGlyphs is the number of dots in the typing indicator.
	TypingGlyphs = 3
	// DefaultTypingInterval is the period between indicator frames.
	DefaultTypingInterval = 300 * time.Millisecond
)

// TypingFrame renders one indicator frame as plain text.
func TypingFrame(active int) string {
	dots := make([]string, TypingGlyphs)
	for i := range dots {
		dots[i] = "·"
		if i == active%TypingGlyphs {
			dots[i] = "●"
		}
	}
	return strings.Join(dots, " ")
}

// Indicator cycles the emphasised glyph until stopped.
type Indicator struct {
	interval time.Duration
	onFrame  func(active int)
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartIndicator draws frame 0 immediately and advances every interval.
func StartIndicator(interval time.Duration, onFrame func(active int)) *Indicator {
	if interval <= 0 {
		interval = DefaultTypingInterval
	}
	ind := &Indicator{
		interval: interval,
		onFrame:  onFrame,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	ind.onFrame(0)
	go ind.run()
	return ind
}

func (i *Indicator) run() {
	defer close(i.done)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	active := 0
	for {
		select {
		case <-i.stop:
			return
		case <-ticker.C:
			active = (active + 1) % TypingGlyphs
			i.onFrame(active)
		}
	}
}

// Stop halts the animation and waits for the goroutine to exit. No frame
// is delivered after Stop returns. Safe to call more than once.
func (i *Indicator) Stop() {
	i.stopOnce.Do(func() {
		close(i.stop)
	})
	<-i.done
}
