package speech

import (
	"errors"
	"fmt"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned by Start while a capture is active.
var ErrAlreadyStarted = errors.New("capture already started")

// Handler receives capture events on the poster's goroutine.
type Handler struct {
	// OnUpdate carries the full reconstructed transcript, not a delta.
	OnUpdate func(text string)
	// OnError reports a genuine failure. Aborts are never reported.
	OnError func(kind ErrorKind)
	// OnUnexpectedStop fires when the engine halts without Stop. The
	// adapter restarts the engine right after it returns.
	OnUnexpectedStop func()
}

// Adapter owns one Engine and turns its raw events into Handler calls.
// Start, Stop and all Handler callbacks run on the poster's goroutine.
type Adapter struct {
	engine Engine
	poster loop.Poster
	locale string
	logger *zap.Logger

	gen        int
	active     bool
	handler    Handler
	transcript Transcript
	restarts   int
}

// NewAdapter creates an adapter for engine. An empty locale means
// DefaultLocale.
func NewAdapter(engine Engine, poster loop.Poster, locale string, logger *zap.Logger) *Adapter {
	if locale == "" {
		locale = DefaultLocale
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		engine: engine,
		poster: poster,
		locale: locale,
		logger: logger,
	}
}

// Start begins a fresh capture with an empty transcript.
func (a *Adapter) Start(h Handler) error {
	if a.active {
		return ErrAlreadyStarted
	}

	a.gen++
	a.active = true
	a.handler = h
	a.transcript.Reset()

	if err := a.engine.Start(a.locale, a.emitter(a.gen)); err != nil {
		a.active = false
		return fmt.Errorf("start capture: %w", err)
	}

	a.logger.Debug("capture started", zap.String("locale", a.locale))
	return nil
}

// Stop ends the capture. Nothing from the stopped run reaches the handler
// afterwards. Safe to call when not started.
func (a *Adapter) Stop() {
	if !a.active {
		return
	}
	a.active = false
	a.gen++
	a.handler = Handler{}

	if err := a.engine.Stop(); err != nil {
		a.logger.Debug("stop capture", zap.Error(err))
	}
}

// Active reports whether a capture is running.
func (a *Adapter) Active() bool {
	return a.active
}

// Transcript returns the current reconstructed transcript.
func (a *Adapter) Transcript() string {
	return a.transcript.String()
}

// Restarts returns how many times the engine was restarted after an
// unexpected stop.
func (a *Adapter) Restarts() int {
	return a.restarts
}

func (a *Adapter) emitter(gen int) func(Event) {
	return func(ev Event) {
		a.poster.Post(func() { a.handle(gen, ev) })
	}
}

func (a *Adapter) handle(gen int, ev Event) {
	if !a.active || gen != a.gen {
		return
	}

	switch ev.Type {
	case EventResults:
		a.transcript.Apply(ev.Results)
		if a.handler.OnUpdate != nil {
			a.handler.OnUpdate(a.transcript.String())
		}

	case EventError:
		if ev.Error == ErrAborted {
			return
		}
		a.logger.Debug("capture error", zap.String("kind", string(ev.Error)))
		if a.handler.OnError != nil {
			a.handler.OnError(ev.Error)
		}

	case EventEnd:
		if a.handler.OnUnexpectedStop != nil {
			a.handler.OnUnexpectedStop()
		}
		a.restart(gen)
	}
}

// restart makes one attempt to resume the run that just ended. Failures
// are logged and dropped; the transcript survives.
func (a *Adapter) restart(gen int) {
	if !a.active || gen != a.gen {
		return
	}

	a.restarts++
	if err := a.engine.Start(a.locale, a.emitter(gen)); err != nil {
		a.logger.Debug("restart capture", zap.Error(err))
		return
	}
	a.logger.Debug("capture restarted", zap.Int("restarts", a.restarts))
}
