// Package speech wraps a continuous speech recognizer behind the capture
// contract the interview controller relies on: full-transcript updates,
// suppressed abort errors and best-effort restarts.
package speech

// ErrorKind names a recognizer failure. The vocabulary follows the Web Speech
// API so engines can report the same conditions.
type ErrorKind string

const (
	ErrAborted              ErrorKind = "aborted"
	ErrNoSpeech             ErrorKind = "no-speech"
	ErrAudioCapture         ErrorKind = "audio-capture"
	ErrNetwork              ErrorKind = "network"
	ErrNotAllowed           ErrorKind = "not-allowed"
	ErrServiceNotAllowed    ErrorKind = "service-not-allowed"
	ErrLanguageNotSupported ErrorKind = "language-not-supported"
)

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en-US"

// Result is one recognition hypothesis. Final results are never revised.
type Result struct {
	Text  string
	Final bool
}

// EventType discriminates Event.
type EventType int

const (
	EventResults EventType = iota
	EventError
	EventEnd
)

// Event is emitted by an Engine from any goroutine.
type Event struct {
	Type    EventType
	Results []Result
	Error   ErrorKind
}

// Engine is the underlying recognizer. Start begins one continuous,
// interim-enabled run; Stop ends it. Events of a stopped run may still be
// delivered and are filtered by the Adapter.
type Engine interface {
	Start(locale string, emit func(Event)) error
	Stop() error
}

// Capability is the result of probing for a recognizer.
type Capability int

const (
	Unavailable Capability = iota
	Available
)

func (c Capability) String() string {
	if c == Available {
		return "available"
	}
	return "unavailable"
}

// Probe detects whether a recognizer can be used at all.
type Probe interface {
	Probe() Capability
}

// StaticProbe always reports the same capability.
type StaticProbe Capability

// Probe implements Probe.
func (p StaticProbe) Probe() Capability { return Capability(p) }
