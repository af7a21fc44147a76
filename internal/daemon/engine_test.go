package daemon

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
)

// fakeDaemon speaks enough of the daemon protocol for the engine: subscribe
// connections receive whatever is pushed on events, command connections get
// canned start/stop responses.
type fakeDaemon struct {
	path   string
	ln     net.Listener
	events chan Event

	mu         sync.Mutex
	cmds       []Command
	startOK    bool
	silentStop bool
}

func startFakeDaemon(t *testing.T) *fakeDaemon {
	t.Helper()

	path := filepath.Join(t.TempDir(), "speech.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	d := &fakeDaemon{path: path, ln: ln, events: make(chan Event, 16), startOK: true}
	go d.accept()
	t.Cleanup(func() { ln.Close() })
	return d
}

func (d *fakeDaemon) accept() {
	for {
		conn, err := d.ln.Accept()
		if err != nil {
			return
		}
		go d.serve(conn)
	}
}

func (d *fakeDaemon) serve(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var cmd Command
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			return
		}
		d.mu.Lock()
		d.cmds = append(d.cmds, cmd)
		ok := d.startOK
		silent := d.silentStop
		d.mu.Unlock()

		if cmd.Cmd == CmdStop && silent {
			continue
		}

		resp := Response{OK: true}
		if cmd.Cmd == CmdStart {
			resp.OK = ok
			resp.SessionID = "daemon-1"
			if !ok {
				resp.Error = "microphone busy"
			}
		}
		writeLine(conn, resp)

		if cmd.Cmd == CmdSubscribe {
			for ev := range d.events {
				if writeLine(conn, ev) != nil {
					return
				}
			}
			return
		}
	}
}

func writeLine(conn net.Conn, v any) error {
	data, _ := json.Marshal(v)
	_, err := conn.Write(append(data, '\n'))
	return err
}

func (d *fakeDaemon) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var names []string
	for _, c := range d.cmds {
		names = append(names, c.Cmd)
	}
	return names
}

func collect(t *testing.T, ch <-chan speech.Event, n int) []speech.Event {
	t.Helper()
	var got []speech.Event
	deadline := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case ev := <-ch:
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("got %d events, want %d", len(got), n)
		}
	}
	return got
}

func TestEngineTranslatesEvents(t *testing.T) {
	d := startFakeDaemon(t)
	eng := NewEngine(d.path, nil)

	out := make(chan speech.Event, 16)
	if err := eng.Start("en-US", func(ev speech.Event) { out <- ev }); err != nil {
		t.Fatalf("start: %v", err)
	}

	d.events <- Event{Event: EventSegment, Text: "I built a cache"}
	d.events <- Event{Event: EventPartial, Text: "layer"}
	d.events <- Event{Event: EventError, Message: "blip", Transient: BoolPtr(true)}
	d.events <- Event{Event: EventError, Kind: "no-speech"}
	d.events <- Event{Event: EventStatus, Recording: BoolPtr(false)}

	got := collect(t, out, 4)

	if got[0].Type != speech.EventResults || !got[0].Results[0].Final || got[0].Results[0].Text != "I built a cache" {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].Type != speech.EventResults || got[1].Results[0].Final || got[1].Results[0].Text != "layer" {
		t.Errorf("event 1 = %+v", got[1])
	}
	if got[2].Type != speech.EventError || got[2].Error != speech.ErrNoSpeech {
		t.Errorf("event 2 = %+v, transient errors should be skipped", got[2])
	}
	if got[3].Type != speech.EventEnd {
		t.Errorf("event 3 = %+v, want end", got[3])
	}

	cmds := d.commands()
	if len(cmds) < 2 || cmds[0] != CmdSubscribe || cmds[1] != CmdStart {
		t.Errorf("commands = %v, want [subscribe start]", cmds)
	}
}

func TestEngineStopSendsStop(t *testing.T) {
	d := startFakeDaemon(t)
	eng := NewEngine(d.path, nil)

	out := make(chan speech.Event, 16)
	if err := eng.Start("en-US", func(ev speech.Event) { out <- ev }); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := eng.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := eng.Stop(); err != nil {
		t.Errorf("second stop: %v", err)
	}

	cmds := d.commands()
	if cmds[len(cmds)-1] != CmdStop {
		t.Errorf("last command = %q, want stop", cmds[len(cmds)-1])
	}

	select {
	case ev := <-out:
		t.Errorf("no events expected after stop, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngineStopUnanswered(t *testing.T) {
	d := startFakeDaemon(t)
	d.mu.Lock()
	d.silentStop = true
	d.mu.Unlock()
	eng := NewEngine(d.path, nil)
	eng.Timeout = 100 * time.Millisecond

	if err := eng.Start("en-US", func(speech.Event) {}); err != nil {
		t.Fatalf("start: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- eng.Stop() }()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected stop error when the daemon never replies")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stop still blocked after 2s")
	}
}

func TestEngineStreamOutlivesTimeout(t *testing.T) {
	d := startFakeDaemon(t)
	eng := NewEngine(d.path, nil)
	eng.Timeout = 50 * time.Millisecond

	out := make(chan speech.Event, 16)
	if err := eng.Start("en-US", func(ev speech.Event) { out <- ev }); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer eng.Stop()

	time.Sleep(150 * time.Millisecond)
	d.events <- Event{Event: EventPartial, Text: "still listening"}

	select {
	case ev := <-out:
		if ev.Type != speech.EventResults || ev.Results[0].Text != "still listening" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after the command timeout elapsed")
	}
}

func TestEngineStartRejected(t *testing.T) {
	d := startFakeDaemon(t)
	d.mu.Lock()
	d.startOK = false
	d.mu.Unlock()
	eng := NewEngine(d.path, nil)

	if err := eng.Start("en-US", func(speech.Event) {}); err == nil {
		t.Fatal("expected start error")
	}
}

func TestProbe(t *testing.T) {
	d := startFakeDaemon(t)

	if got := (Probe{SocketPath: d.path}).Probe(); got != speech.Available {
		t.Errorf("probe = %v, want available", got)
	}
	missing := filepath.Join(t.TempDir(), "missing.sock")
	if got := (Probe{SocketPath: missing, Timeout: 100 * time.Millisecond}).Probe(); got != speech.Unavailable {
		t.Errorf("probe = %v, want unavailable", got)
	}
}
