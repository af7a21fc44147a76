// Package countdown implements the recording-turn timer.
package countdown

import (
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
)

// Countdown ticks once per interval, decrementing the remaining seconds.
// Callbacks always run on the poster's goroutine, and Start/Cancel must be
// called from that same goroutine.
type Countdown struct {
	poster   loop.Poster
	interval time.Duration

	gen       int
	remaining int
	running   bool
	stop      chan struct{}
	onTick    func(remaining int)
	onExpire  func()
}

// New creates a stopped countdown. interval is one second in production.
func New(poster loop.Poster, interval time.Duration) *Countdown {
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{poster: poster, interval: interval}
}

// Start begins a countdown from seconds. A running countdown is cancelled
// first.
func (c *Countdown) Start(seconds int, onTick func(remaining int), onExpire func()) {
	c.Cancel()

	c.gen++
	c.remaining = seconds
	c.running = true
	c.onTick = onTick
	c.onExpire = onExpire
	c.stop = make(chan struct{})

	go c.run(c.gen, c.stop)
}

// Cancel stops ticking. No onTick or onExpire fires after it returns, even
// for ticks already queued on the poster. Idempotent.
func (c *Countdown) Cancel() {
	if !c.running {
		return
	}
	c.running = false
	c.gen++
	close(c.stop)
}

// Running reports whether the countdown is active.
func (c *Countdown) Running() bool {
	return c.running
}

// Remaining returns the seconds left in the current or last run.
func (c *Countdown) Remaining() int {
	return c.remaining
}

func (c *Countdown) run(gen int, stop <-chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.poster.Post(func() { c.tick(gen) })
		}
	}
}

func (c *Countdown) tick(gen int) {
	if !c.running || gen != c.gen {
		return
	}

	c.remaining--
	if c.remaining < 0 {
		c.remaining = 0
	}
	if c.onTick != nil {
		c.onTick(c.remaining)
	}

	// onTick may have cancelled us.
	if !c.running || gen != c.gen {
		return
	}
	if c.remaining == 0 {
		expire := c.onExpire
		c.Cancel()
		if expire != nil {
			expire()
		}
	}
}
