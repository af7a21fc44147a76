package session

import (
	"errors"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
)

const (
	unsupportedMessage = "Speech recognition is not available. Start the speech daemon and try again."
	emptyAnswerMessage = "No transcript detected. Please try answering again."
	evaluationFallback = "Evaluation failed."
)

var (
	// ErrUnsupported means no recognizer is available. The interview cannot
	// be answered at all.
	ErrUnsupported = errors.New(unsupportedMessage)
	// ErrBusy is returned when an action is not allowed in the current turn
	// state.
	ErrBusy = errors.New("another action is in progress")
	// ErrFinished is returned once the final report has arrived.
	ErrFinished = errors.New("interview finished")
	// ErrEmptyAnswer is returned by Submit when nothing was transcribed.
	ErrEmptyAnswer = errors.New(emptyAnswerMessage)
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// CaptureError is a recoverable speech capture failure.
type CaptureError struct {
	Kind speech.ErrorKind
	Err  error
}

func (e *CaptureError) Error() string {
	return "Speech recognition error: " + string(e.Kind)
}

func (e *CaptureError) Unwrap() error { return e.Err }
