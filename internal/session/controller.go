// Package session drives one interview: recording an answer, submitting it
// for evaluation and advancing to the next question until the service sends
// a final report.
//
// A Controller is not safe for concurrent use. Every method, and every
// callback it registers, runs on the goroutine that drains the Poster.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/countdown"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/logger"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/metrics"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
	"go.uber.org/zap"
)

const (
	// DefaultTotalQuestions is the question count shown as progress.
	DefaultTotalQuestions = 5
	// DefaultMaxRecordSeconds is the recording ceiling of one answer.
	DefaultMaxRecordSeconds = 90
	// DefaultCompletionDelay is how long the last evaluation stays on screen
	// before the final report is handed over.
	DefaultCompletionDelay = 3 * time.Second
)

// TurnState is the phase of the current question.
type TurnState int

const (
	Idle TurnState = iota
	Recording
	Evaluating
)

func (s TurnState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Evaluating:
		return "evaluating"
	}
	return "unknown"
}

// Capture is the speech capture the controller drives. *speech.Adapter
// implements it.
type Capture interface {
	Start(h speech.Handler) error
	Stop()
}

// Evaluator scores answers. *api.Client implements it.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, in api.EvaluateRequest) (*api.EvaluateResponse, error)
}

// Config describes the session being run. Zero values take defaults.
type Config struct {
	SessionID     string
	FirstQuestion string

	// TotalQuestions is only shown as progress. The service decides when
	// the interview ends.
	TotalQuestions   int
	MaxRecordSeconds int
	CompletionDelay  time.Duration
	TickInterval     time.Duration
}

// Deps are the collaborators of a Controller. Probe, OnComplete, Logger and
// Metrics may be nil.
type Deps struct {
	Capture    Capture
	Probe      speech.Probe
	Evaluator  Evaluator
	Poster     loop.Poster
	OnComplete func(report api.FinalReport)
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Turn is one answered question.
type Turn struct {
	Question   string
	Answer     string
	Evaluation api.Evaluation
}

// Snapshot is a read-only copy of the controller state for rendering.
type Snapshot struct {
	State      TurnState
	Question   string
	Number     int
	Total      int
	Transcript string
	Remaining  int
	Evaluation *api.Evaluation
	Error      string
	Supported  bool
	// Finished is set once the final report has arrived, before the
	// completion callback runs.
	Finished bool
	History  []Turn
}

// Controller is the interview state machine.
type Controller struct {
	cfg    Config
	deps   Deps
	logger *zap.Logger
	timer  *countdown.Countdown

	state      TurnState
	question   string
	number     int
	transcript string
	remaining  int
	evaluation *api.Evaluation
	errMsg     string
	supported  bool

	previousQuestions []string
	previousAnswers   []string
	history           []Turn

	gen        int
	finished   bool
	completed  bool
	closed     bool
	cancelReq  context.CancelFunc
	completion *time.Timer
}

// New creates a controller in the idle state on the first question.
func New(cfg Config, deps Deps) *Controller {
	if cfg.TotalQuestions <= 0 {
		cfg.TotalQuestions = DefaultTotalQuestions
	}
	if cfg.MaxRecordSeconds <= 0 {
		cfg.MaxRecordSeconds = DefaultMaxRecordSeconds
	}
	if cfg.CompletionDelay <= 0 {
		cfg.CompletionDelay = DefaultCompletionDelay
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	supported := true
	if deps.Probe != nil {
		supported = deps.Probe.Probe() == speech.Available
	}

	c := &Controller{
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger.With(zap.String("session", cfg.SessionID)),
		timer:     countdown.New(deps.Poster, cfg.TickInterval),
		state:     Idle,
		question:  cfg.FirstQuestion,
		number:    1,
		remaining: cfg.MaxRecordSeconds,
		supported: supported,
	}
	if !supported {
		c.errMsg = unsupportedMessage
		c.logger.Warn("speech recognition unavailable")
	}
	return c
}

// StartAnswer begins recording an answer to the current question. It also
// serves as re-record: the previous transcript and evaluation are discarded.
func (c *Controller) StartAnswer() error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.state != Idle {
		return ErrBusy
	}

	c.transcript = ""
	c.evaluation = nil
	c.errMsg = ""
	c.remaining = c.cfg.MaxRecordSeconds

	err := c.deps.Capture.Start(speech.Handler{
		OnUpdate:         c.onUpdate,
		OnError:          c.onCaptureError,
		OnUnexpectedStop: c.onUnexpectedStop,
	})
	if err != nil {
		cerr := &CaptureError{Kind: speech.ErrAudioCapture, Err: err}
		c.errMsg = cerr.Error()
		c.deps.Metrics.CaptureError(string(cerr.Kind))
		c.logger.Error("start capture", zap.Error(err))
		return cerr
	}

	c.state = Recording
	c.timer.Start(c.cfg.MaxRecordSeconds, c.onTick, c.onExpire)
	c.deps.Metrics.RecordingStarted()
	c.logger.Debug("recording started", zap.Int("question", c.number))
	return nil
}

// Stop ends recording and keeps the transcript for submission. It does
// nothing unless recording.
func (c *Controller) Stop() {
	if c.state != Recording {
		return
	}
	c.halt()
	c.logger.Debug("recording stopped", zap.Int("chars", len(c.transcript)))
}

// Submit sends the transcript for evaluation. The result arrives
// asynchronously through the Poster.
func (c *Controller) Submit() error {
	if err := c.guard(); err != nil {
		return err
	}
	if c.state != Idle {
		return ErrBusy
	}

	answer := strings.TrimSpace(c.transcript)
	if answer == "" {
		c.errMsg = emptyAnswerMessage
		return ErrEmptyAnswer
	}

	c.state = Evaluating
	c.errMsg = ""

	req := api.EvaluateRequest{
		SessionID:         c.cfg.SessionID,
		CurrentQuestion:   c.question,
		CurrentAnswer:     answer,
		PreviousQuestions: append([]string{}, c.previousQuestions...),
		PreviousAnswers:   append([]string{}, c.previousAnswers...),
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelReq = cancel
	gen := c.gen

	c.deps.Metrics.AnswerSubmitted()
	c.logger.Info("answer submitted",
		zap.Int("question", c.number),
		zap.String("answer", logger.Truncate(answer, 80)))

	go func() {
		resp, err := c.deps.Evaluator.EvaluateAnswer(ctx, req)
		c.deps.Poster.Post(func() { c.evaluated(gen, req, resp, err) })
	}()
	return nil
}

// Close tears the session down: capture and timer stop, the in-flight
// request and the pending completion are cancelled, and nothing queued
// afterwards has any effect. Idempotent.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.gen++

	if c.state == Recording {
		c.halt()
	}
	c.timer.Cancel()
	if c.cancelReq != nil {
		c.cancelReq()
		c.cancelReq = nil
	}
	if c.completion != nil {
		c.completion.Stop()
		c.completion = nil
	}
	c.logger.Debug("session closed")
}

// State returns the current turn state.
func (c *Controller) State() TurnState {
	return c.state
}

// Snapshot copies the state for rendering.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		State:      c.state,
		Question:   c.question,
		Number:     c.number,
		Total:      c.cfg.TotalQuestions,
		Transcript: c.transcript,
		Remaining:  c.remaining,
		Error:      c.errMsg,
		Supported:  c.supported,
		Finished:   c.finished,
		History:    c.History(),
	}
	if c.evaluation != nil {
		ev := *c.evaluation
		s.Evaluation = &ev
	}
	return s
}

// History returns every answered question, including the last one.
func (c *Controller) History() []Turn {
	return append([]Turn(nil), c.history...)
}

// PreviousQuestions returns the questions sent as history with the next
// submission.
func (c *Controller) PreviousQuestions() []string {
	return append([]string(nil), c.previousQuestions...)
}

// PreviousAnswers is parallel to PreviousQuestions.
func (c *Controller) PreviousAnswers() []string {
	return append([]string(nil), c.previousAnswers...)
}

func (c *Controller) guard() error {
	switch {
	case c.closed:
		return ErrClosed
	case !c.supported:
		c.errMsg = unsupportedMessage
		return ErrUnsupported
	case c.finished:
		return ErrFinished
	}
	return nil
}

// halt stops capture and the timer and returns to idle.
func (c *Controller) halt() {
	c.deps.Capture.Stop()
	c.timer.Cancel()
	c.state = Idle
}

func (c *Controller) onUpdate(text string) {
	if c.state != Recording {
		return
	}
	c.transcript = text
}

func (c *Controller) onCaptureError(kind speech.ErrorKind) {
	if c.state != Recording {
		return
	}
	c.halt()
	c.errMsg = (&CaptureError{Kind: kind}).Error()
	c.deps.Metrics.CaptureError(string(kind))
	c.logger.Warn("capture error", zap.String("kind", string(kind)))
}

func (c *Controller) onUnexpectedStop() {
	c.deps.Metrics.CaptureRestarted()
	c.logger.Debug("capture ended unexpectedly, restarting")
}

func (c *Controller) onTick(remaining int) {
	c.remaining = remaining
}

func (c *Controller) onExpire() {
	if c.state != Recording {
		return
	}
	c.halt()
	c.deps.Metrics.RecordingTimedOut()
	c.logger.Info("recording ceiling reached", zap.Int("seconds", c.cfg.MaxRecordSeconds))
}

func (c *Controller) evaluated(gen int, req api.EvaluateRequest, resp *api.EvaluateResponse, err error) {
	if c.closed || gen != c.gen || c.state != Evaluating {
		return
	}
	if c.cancelReq != nil {
		c.cancelReq()
		c.cancelReq = nil
	}
	c.state = Idle

	if err != nil {
		c.errMsg = evaluationMessage(err)
		c.deps.Metrics.EvaluationFailed()
		c.logger.Error("evaluate answer", zap.Error(err))
		return
	}

	ev := resp.Evaluation
	c.evaluation = &ev
	c.history = append(c.history, Turn{
		Question:   req.CurrentQuestion,
		Answer:     req.CurrentAnswer,
		Evaluation: ev,
	})

	if resp.IsFinal() {
		c.finished = true
		report := *resp.FinalReport
		c.logger.Info("final report received",
			zap.Float64("overall_score", report.OverallScore),
			zap.String("recommendation", string(report.HireRecommendation)))
		c.completion = time.AfterFunc(c.cfg.CompletionDelay, func() {
			c.deps.Poster.Post(func() { c.complete(gen, report) })
		})
		return
	}

	c.previousQuestions = append(c.previousQuestions, req.CurrentQuestion)
	c.previousAnswers = append(c.previousAnswers, req.CurrentAnswer)
	c.question = resp.NextQuestion
	c.number = resp.QuestionCount + 1
	c.transcript = ""
	c.errMsg = ""
	c.logger.Debug("next question", zap.Int("question", c.number))
}

func (c *Controller) complete(gen int, report api.FinalReport) {
	if c.closed || gen != c.gen || c.completed {
		return
	}
	c.completed = true
	c.completion = nil
	c.deps.Metrics.InterviewCompleted()
	if c.deps.OnComplete != nil {
		c.deps.OnComplete(report)
	}
}

// evaluationMessage is the text shown for a failed submission.
func evaluationMessage(err error) string {
	var ee *api.EvaluationError
	if errors.As(err, &ee) && ee.Detail != "" {
		return ee.Detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return evaluationFallback
}
