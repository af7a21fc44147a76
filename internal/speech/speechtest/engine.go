// Package speechtest provides a scriptable speech.Engine for tests.
package speechtest

import (
	"sync"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
)

// Engine records Start/Stop calls and lets tests emit events as if they came
// from a recognizer.
type Engine struct {
	mu         sync.Mutex
	starts     int
	stops      int
	locale     string
	emit       func(speech.Event)
	startErr   error
	restartErr error
}

// New returns an engine whose starts succeed.
func New() *Engine {
	return &Engine{}
}

// FailStarts makes every Start fail with err.
func (e *Engine) FailStarts(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startErr = err
}

// FailRestarts makes every Start after the first one fail with err.
func (e *Engine) FailRestarts(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restartErr = err
}

// Start implements speech.Engine.
func (e *Engine) Start(locale string, emit func(speech.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		return e.startErr
	}
	if e.restartErr != nil && e.starts > 1 {
		return e.restartErr
	}
	e.locale = locale
	e.emit = emit
	return nil
}

// Stop implements speech.Engine.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
	return nil
}

// Starts returns the number of Start calls, including failed ones.
func (e *Engine) Starts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

// Stops returns the number of Stop calls.
func (e *Engine) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

// Locale returns the locale of the last successful Start.
func (e *Engine) Locale() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locale
}

// Interim emits a non-final result.
func (e *Engine) Interim(text string) {
	e.send(speech.Event{Type: speech.EventResults, Results: []speech.Result{{Text: text}}})
}

// Final emits a final result.
func (e *Engine) Final(text string) {
	e.send(speech.Event{Type: speech.EventResults, Results: []speech.Result{{Text: text, Final: true}}})
}

// Results emits a batch of results.
func (e *Engine) Results(results ...speech.Result) {
	e.send(speech.Event{Type: speech.EventResults, Results: results})
}

// Fail emits an error event.
func (e *Engine) Fail(kind speech.ErrorKind) {
	e.send(speech.Event{Type: speech.EventError, Error: kind})
}

// End emits an end-of-run event.
func (e *Engine) End() {
	e.send(speech.Event{Type: speech.EventEnd})
}

func (e *Engine) send(ev speech.Event) {
	e.mu.Lock()
	emit := e.emit
	e.mu.Unlock()
	if emit != nil {
		emit(ev)
	}
}
