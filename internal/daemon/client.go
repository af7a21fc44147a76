package daemon

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrClosed is returned when the daemon closes the connection.
var ErrClosed = errors.New("connection closed")

// SocketPath returns the default speech daemon socket path. It is where the
// steno daemon listens on macOS; other platforms set speech.socket.
func SocketPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Application Support", "Steno", "steno.sock")
}

// Client communicates with the speech daemon over a Unix socket.
type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
	mu      sync.Mutex
	// timeout bounds each SendCommand round-trip. Zero means no deadline.
	timeout time.Duration
}

// Connect dials the daemon Unix socket.
func Connect(socketPath string) (*Client, error) {
	return ConnectTimeout(socketPath, 0)
}

// ConnectTimeout dials with a timeout that also bounds every command
// round-trip. Zero means no timeout. Event reads are never bounded.
func ConnectTimeout(socketPath string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	return &Client{conn: conn, scanner: scanner, timeout: timeout}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SendCommand sends a command and reads one response line.
func (c *Client) SendCommand(cmd Command) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return Response{}, fmt.Errorf("set deadline: %w", err)
		}
		// Cleared so a subscribed connection can block in ReadEvent.
		defer c.conn.SetDeadline(time.Time{})
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return Response{}, fmt.Errorf("write command: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("read response: %w", err)
		}
		return Response{}, ErrClosed
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}

	return resp, nil
}

// Subscribe asks the daemon to stream the named events on this connection.
func (c *Client) Subscribe(events ...string) error {
	resp, err := c.SendCommand(Command{Cmd: CmdSubscribe, Events: events})
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("subscribe: %s", resp.Error)
	}
	return nil
}

// ReadEvent reads the next NDJSON event line. Blocks until data arrives.
// After Subscribe, use this in a loop to receive events.
func (c *Client) ReadEvent() (Event, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Event{}, fmt.Errorf("read event: %w", err)
		}
		return Event{}, ErrClosed
	}

	var ev Event
	if err := json.Unmarshal(c.scanner.Bytes(), &ev); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}

	return ev, nil
}
