// Package daemon provides the client and protocol types for talking to the
// speech daemon over a Unix socket using NDJSON, and a speech.Engine built on
// top of them.
package daemon

// Command is sent from a client to the daemon.
type Command struct {
	Cmd    string   `json:"cmd"`
	Locale string   `json:"locale,omitempty"`
	Events []string `json:"events,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId,omitempty"`
	Recording *bool  `json:"recording,omitempty"`
	Error     string `json:"error,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Event is streamed from the daemon to subscribed clients.
type Event struct {
	Event          string `json:"event"`
	Text           string `json:"text,omitempty"`
	SessionID      string `json:"sessionId,omitempty"`
	SequenceNumber *int   `json:"sequenceNumber,omitempty"`
	Message        string `json:"message,omitempty"`
	Kind           string `json:"kind,omitempty"`
	Transient      *bool  `json:"transient,omitempty"`
	Recording      *bool  `json:"recording,omitempty"`
}

// Command names.
const (
	CmdSubscribe = "subscribe"
	CmdStart     = "start"
	CmdStop      = "stop"
	CmdStatus    = "status"
)

// Event names.
const (
	EventPartial = "partial"
	EventSegment = "segment"
	EventError   = "error"
	EventStatus  = "status"
)

// transcriptEvents is the subscription filter the engine asks for.
var transcriptEvents = []string{EventPartial, EventSegment, EventError, EventStatus}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(b bool) *bool { return &b }
