package daemon

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
	"go.uber.org/zap"
)

// DefaultTimeout bounds dialing the daemon and each command round-trip.
const DefaultTimeout = 2 * time.Second

// Engine is a speech.Engine backed by the daemon. Each run uses two
// connections: one subscribed to transcript events, one for commands.
//
// Start and Stop run on the owner goroutine, so every dial and command is
// bounded by Timeout (DefaultTimeout when zero).
type Engine struct {
	Timeout time.Duration

	socketPath string
	logger     *zap.Logger

	mu  sync.Mutex
	cur *run
}

type run struct {
	cmd     *Client
	ev      *Client
	stopped atomic.Bool
}

func (r *run) close() {
	r.ev.Close()
	r.cmd.Close()
}

// NewEngine creates an engine for the daemon at socketPath.
func NewEngine(socketPath string, logger *zap.Logger) *Engine {
	if socketPath == "" {
		socketPath = SocketPath()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{socketPath: socketPath, logger: logger}
}

// Start implements speech.Engine. A run that ended on its own is torn down
// before the new one begins.
func (e *Engine) Start(locale string, emit func(speech.Event)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cur != nil {
		e.cur.stopped.Store(true)
		e.cur.close()
		e.cur = nil
	}

	evClient, err := ConnectTimeout(e.socketPath, e.timeout())
	if err != nil {
		return err
	}
	if err := evClient.Subscribe(transcriptEvents...); err != nil {
		evClient.Close()
		return err
	}

	cmdClient, err := ConnectTimeout(e.socketPath, e.timeout())
	if err != nil {
		evClient.Close()
		return err
	}

	resp, err := cmdClient.SendCommand(Command{Cmd: CmdStart, Locale: locale})
	if err == nil && !resp.OK {
		err = fmt.Errorf("start recording: %s", resp.Error)
	}
	if err != nil {
		evClient.Close()
		cmdClient.Close()
		return err
	}

	r := &run{cmd: cmdClient, ev: evClient}
	e.cur = r
	go e.read(r, emit)

	e.logger.Debug("daemon recording started",
		zap.String("session", resp.SessionID),
		zap.String("locale", locale))
	return nil
}

// Stop implements speech.Engine.
func (e *Engine) Stop() error {
	e.mu.Lock()
	r := e.cur
	e.cur = nil
	e.mu.Unlock()

	if r == nil {
		return nil
	}
	r.stopped.Store(true)
	defer r.close()

	resp, err := r.cmd.SendCommand(Command{Cmd: CmdStop})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("stop recording: %s", resp.Error)
	}
	return nil
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return DefaultTimeout
}

func (e *Engine) read(r *run, emit func(speech.Event)) {
	for {
		ev, err := r.ev.ReadEvent()
		if r.stopped.Load() {
			return
		}
		if err != nil {
			e.logger.Debug("daemon event stream failed", zap.Error(err))
			emit(speech.Event{Type: speech.EventError, Error: speech.ErrNetwork})
			return
		}

		switch ev.Event {
		case EventPartial:
			emit(speech.Event{Type: speech.EventResults, Results: []speech.Result{{Text: ev.Text}}})

		case EventSegment:
			emit(speech.Event{Type: speech.EventResults, Results: []speech.Result{{Text: ev.Text, Final: true}}})

		case EventError:
			if ev.Transient != nil && *ev.Transient {
				e.logger.Debug("transient daemon error", zap.String("message", ev.Message))
				continue
			}
			kind := speech.ErrorKind(ev.Kind)
			if kind == "" {
				kind = speech.ErrAudioCapture
			}
			emit(speech.Event{Type: speech.EventError, Error: kind})

		case EventStatus:
			if ev.Recording != nil && !*ev.Recording {
				emit(speech.Event{Type: speech.EventEnd})
				return
			}
		}
	}
}

// Probe reports whether the daemon socket accepts connections.
type Probe struct {
	SocketPath string
	Timeout    time.Duration
}

// Probe implements speech.Probe.
func (p Probe) Probe() speech.Capability {
	path := p.SocketPath
	if path == "" {
		path = SocketPath()
	}
	timeout := p.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	c, err := ConnectTimeout(path, timeout)
	if err != nil {
		return speech.Unavailable
	}
	c.Close()
	return speech.Available
}
