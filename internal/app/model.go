package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/metrics"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/session"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Phase is the top-level screen.
type Phase int

const (
	PhaseUpload Phase = iota
	PhaseInterview
	PhaseReport
)

const (
	noFileMessage = "Please select a file first."
	queueSize     = 64
	scoreBarLen   = 10
)

// Client is the evaluation service. *api.Client implements it.
type Client interface {
	UploadResume(ctx context.Context, path string) (*api.UploadResponse, error)
	session.Evaluator
}

// Store keeps finished interviews. *db.Store implements it.
type Store interface {
	SaveInterview(iv *db.Interview) error
}

// Options configure the TUI. Store, Probe, Logger and Metrics may be nil.
type Options struct {
	Client Client
	// NewCapture builds the speech capture for one interview. It must
	// deliver events through poster.
	NewCapture func(poster loop.Poster) session.Capture
	Probe      speech.Probe
	Store      Store
	// Session carries the question count, recording ceiling and completion
	// delay. SessionID and FirstQuestion are filled from the upload.
	Session    session.Config
	ResumePath string
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// outbox hands the final report from the session callback to Update.
type outbox struct {
	report *api.FinalReport
}

// Model is the root bubbletea model for the interview TUI.
type Model struct {
	opts   Options
	logger *zap.Logger
	queue  *loop.Queue
	ctx    context.Context
	cancel context.CancelFunc
	outbox *outbox

	phase  Phase
	width  int
	height int

	// Upload
	path       string
	uploading  bool
	upload     *api.UploadResponse
	resumeName string

	// Interview
	ctrl      *session.Controller
	startedAt time.Time

	// Report
	report  *api.FinalReport
	history []session.Turn
	savedID string

	// Errors
	errorMessage   string
	errorTransient bool
}

// New creates a Model on the upload screen.
func New(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		opts:   opts,
		logger: opts.Logger,
		queue:  loop.NewQueue(queueSize),
		ctx:    ctx,
		cancel: cancel,
		outbox: &outbox{},
		phase:  PhaseUpload,
		path:   opts.ResumePath,
	}
}

// Init starts draining the event queue.
func (m Model) Init() tea.Cmd {
	return waitPostedCmd(m.queue)
}

// waitPostedCmd blocks until background work posts a closure. It returns
// nil once the queue is closed.
func waitPostedCmd(q *loop.Queue) tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-q.C():
			return postedMsg{fn: fn}
		case <-q.Done():
			return nil
		}
	}
}

// uploadCmd sends the resume to the service.
func uploadCmd(ctx context.Context, client Client, path string) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.UploadResume(ctx, path)
		if err != nil {
			return UploadErrorMsg{Err: err}
		}
		return ResumeUploadedMsg{Name: filepath.Base(path), Response: *resp}
	}
}

// saveCmd stores a finished interview.
func saveCmd(store Store, iv *db.Interview) tea.Cmd {
	return func() tea.Msg {
		if err := store.SaveInterview(iv); err != nil {
			return SaveErrorMsg{Err: err}
		}
		return InterviewSavedMsg{ID: iv.ID}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient errors.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case ResumeUploadedMsg:
		m.uploading = false
		resp := msg.Response
		m.upload = &resp
		m.resumeName = msg.Name
		m.errorMessage = ""
		m.logger.Info("resume uploaded",
			zap.String("resume", msg.Name),
			zap.String("session", resp.SessionID))
		return m, nil

	case UploadErrorMsg:
		m.uploading = false
		m.errorMessage = uploadMessage(msg.Err)
		m.errorTransient = false
		m.logger.Error("upload resume", zap.Error(msg.Err))
		return m, nil

	case postedMsg:
		msg.fn()
		cmds := []tea.Cmd{waitPostedCmd(m.queue)}
		if report := m.outbox.report; report != nil {
			m.outbox.report = nil
			cmds = append(cmds, m.finishInterview(*report))
		}
		return m, tea.Batch(cmds...)

	case InterviewSavedMsg:
		m.savedID = msg.ID
		m.logger.Info("interview saved", zap.String("id", msg.ID))
		return m, nil

	case SaveErrorMsg:
		m.errorMessage = "Could not save interview: " + msg.Err.Error()
		m.errorTransient = true
		m.logger.Error("save interview", zap.Error(msg.Err))
		return m, clearTransientErrorCmd()

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		return m, nil
	}

	return m, nil
}

// uploadMessage is the text shown for a failed upload.
func uploadMessage(err error) string {
	var ue *api.UploadError
	if errors.As(err, &ue) && ue.Detail != "" {
		return ue.Detail
	}
	return err.Error()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyCtrlC {
		m.teardown()
		return m, tea.Quit
	}

	switch m.phase {
	case PhaseUpload:
		return m.handleUploadKey(msg)
	case PhaseInterview:
		return m.handleInterviewKey(key)
	case PhaseReport:
		switch key {
		case KeyQuit, KeyQuitUpper, KeyEsc:
			m.teardown()
			return m, tea.Quit
		case KeyNewInterview, KeyNewUpper:
			m.resetToUpload()
		}
	}
	return m, nil
}

func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == KeyEsc {
		m.teardown()
		return m, tea.Quit
	}
	if m.uploading {
		return m, nil
	}

	// Resume parsed: Enter begins the interview.
	if m.upload != nil {
		switch key {
		case KeyEnter:
			m.startInterview()
		case KeyQuit, KeyQuitUpper:
			m.teardown()
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(m.path)
		if path == "" {
			m.errorMessage = noFileMessage
			m.errorTransient = false
			return m, nil
		}
		if err := api.ValidateResumeName(path); err != nil {
			m.errorMessage = err.Error()
			m.errorTransient = false
			return m, nil
		}
		m.uploading = true
		m.errorMessage = ""
		return m, uploadCmd(m.ctx, m.opts.Client, path)
	case tea.KeyBackspace:
		if r := []rune(m.path); len(r) > 0 {
			m.path = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.path += " "
	case tea.KeyRunes:
		m.path += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handleInterviewKey(key string) (tea.Model, tea.Cmd) {
	if m.ctrl == nil {
		return m, nil
	}
	snap := m.ctrl.Snapshot()

	var err error
	switch key {
	case KeyQuit, KeyQuitUpper, KeyEsc:
		m.teardown()
		return m, tea.Quit

	case KeySpace:
		switch {
		case snap.State == session.Recording:
			m.ctrl.Stop()
		case snap.State == session.Idle && snap.Transcript == "":
			err = m.ctrl.StartAnswer()
		}

	case KeyReRecord, KeyReRecordUp:
		if snap.State == session.Idle && snap.Transcript != "" {
			err = m.ctrl.StartAnswer()
		}

	case KeyEnter:
		if snap.State == session.Idle {
			err = m.ctrl.Submit()
		}
	}

	// Recoverable failures are surfaced through the snapshot error.
	if err != nil {
		m.logger.Debug("interview action rejected", zap.String("key", key), zap.Error(err))
	}
	return m, nil
}

// startInterview opens a session on the uploaded resume.
func (m *Model) startInterview() {
	cfg := m.opts.Session
	cfg.SessionID = m.upload.SessionID
	cfg.FirstQuestion = m.upload.FirstQuestion

	out := m.outbox
	m.ctrl = session.New(cfg, session.Deps{
		Capture:    m.opts.NewCapture(m.queue),
		Probe:      m.opts.Probe,
		Evaluator:  m.opts.Client,
		Poster:     m.queue,
		OnComplete: func(report api.FinalReport) { out.report = &report },
		Logger:     m.logger,
		Metrics:    m.opts.Metrics,
	})
	m.phase = PhaseInterview
	m.startedAt = time.Now()
	m.errorMessage = ""
	m.logger.Info("interview started", zap.String("session", cfg.SessionID))
}

// finishInterview moves to the report screen and saves the interview.
func (m *Model) finishInterview(report api.FinalReport) tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	m.history = m.ctrl.History()
	sessionID := m.upload.SessionID
	m.ctrl.Close()
	m.ctrl = nil
	m.report = &report
	m.phase = PhaseReport
	m.savedID = ""

	if m.opts.Store == nil {
		return nil
	}
	iv := &db.Interview{
		SessionID:   sessionID,
		ResumeName:  m.resumeName,
		StartedAt:   m.startedAt,
		CompletedAt: time.Now(),
		Report:      report,
	}
	for _, turn := range m.history {
		iv.Answers = append(iv.Answers, db.Answer{
			Question:   turn.Question,
			Answer:     turn.Answer,
			Evaluation: turn.Evaluation,
		})
	}
	return saveCmd(m.opts.Store, iv)
}

// resetToUpload returns to the upload screen, keeping the last path.
func (m *Model) resetToUpload() {
	if m.ctrl != nil {
		m.ctrl.Close()
		m.ctrl = nil
	}
	m.phase = PhaseUpload
	m.upload = nil
	m.resumeName = ""
	m.report = nil
	m.history = nil
	m.savedID = ""
	m.errorMessage = ""
	m.errorTransient = false
}

// teardown releases the session and stops background work.
func (m *Model) teardown() {
	if m.ctrl != nil {
		m.ctrl.Close()
		m.ctrl = nil
	}
	m.cancel()
	m.queue.Close()
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.phase {
	case PhaseUpload:
		sections = append(sections, m.renderUpload())
	case PhaseInterview:
		sections = append(sections, m.renderInterview())
	case PhaseReport:
		sections = append(sections, m.renderReport())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if msg := m.currentError(); msg != "" {
		sections = append(sections, m.renderErrorBar(msg))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// currentError prefers the model's own error over the session's.
func (m Model) currentError() string {
	if m.errorMessage != "" {
		return m.errorMessage
	}
	if m.phase == PhaseInterview && m.ctrl != nil {
		return m.ctrl.Snapshot().Error
	}
	return ""
}

func (m Model) contentWidth() int {
	return max(20, m.width-4)
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("AI INTERVIEW PREP")
	var sub string
	switch m.phase {
	case PhaseUpload:
		sub = "Upload your resume to start a personalized mock interview"
	case PhaseInterview:
		if m.resumeName != "" {
			sub = "Interviewing on " + m.resumeName
		}
	case PhaseReport:
		sub = "Interview complete"
	}
	if sub == "" {
		return title
	}
	return title + "  " + ui.SubtitleStyle.Render(sub)
}

func (m Model) renderUpload() string {
	w := m.contentWidth()
	var lines []string
	lines = append(lines, "")
	lines = append(lines, ui.SectionTitleStyle.Render("Resume (PDF or DOCX)"))

	field := m.path
	if m.upload == nil && !m.uploading {
		field += "▌"
	}
	if field == "" {
		field = " "
	}
	lines = append(lines, "  "+ui.InputStyle.Render(truncateToWidth(field, w-2)))
	lines = append(lines, "")

	switch {
	case m.uploading:
		lines = append(lines, "  "+ui.SpinnerStyle.Render("⟳ Analyzing Resume..."))
	case m.upload != nil:
		lines = append(lines, "  "+ui.SuccessStyle.Render("✓ Resume analyzed successfully! Press Enter to begin."))
	default:
		lines = append(lines, ui.DimStyle.Render("  Type the path to your resume and press Enter to upload & analyze."))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderInterview() string {
	if m.ctrl == nil {
		return ""
	}
	snap := m.ctrl.Snapshot()
	w := m.contentWidth()

	var lines []string
	lines = append(lines, "")
	lines = append(lines, renderQuestionHeader(snap.Number, snap.Total, w))
	for _, l := range wrapText(snap.Question, w) {
		lines = append(lines, ui.QuestionTextStyle.Render(l))
	}
	lines = append(lines, "")

	if !snap.Supported {
		lines = append(lines, ui.ErrorTextStyle.Render("This terminal does not support speech recognition."))
		lines = append(lines, ui.DimStyle.Render("Start the speech daemon and run the interview again."))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, m.renderTranscript(snap, w))

	switch snap.State {
	case session.Recording:
		lines = append(lines, ui.TimerStyle.Render(fmt.Sprintf("⏱ %ds remaining", snap.Remaining)))
	case session.Evaluating:
		lines = append(lines, ui.SpinnerStyle.Render("⟳ Evaluating your answer..."))
	}

	if snap.Evaluation != nil {
		lines = append(lines, "")
		lines = append(lines, renderEvaluation(*snap.Evaluation, w))
	}
	if snap.Finished {
		lines = append(lines, "")
		lines = append(lines, ui.SuccessStyle.Render("Interview complete. Preparing your report..."))
	}
	return strings.Join(lines, "\n")
}

func renderQuestionHeader(number, total, width int) string {
	badge := ui.QuestionBadgeStyle.Render(fmt.Sprintf("Question %d/%d", number, total))
	barLen := min(30, max(5, width-20))
	filled := 0
	if total > 0 {
		filled = min(barLen, number*barLen/total)
	}
	bar := ui.ProgressFillStyle.Render(strings.Repeat("█", filled)) +
		ui.ProgressTrackStyle.Render(strings.Repeat("░", barLen-filled))
	return badge + "  " + bar
}

func (m Model) renderTranscript(snap session.Snapshot, width int) string {
	recording := snap.State == session.Recording

	var title string
	if recording {
		title = ui.RecordingDotStyle.Render("● Listening...")
	} else {
		title = ui.IdleDotStyle.Render("○ Transcript")
	}

	var body []string
	switch {
	case snap.Transcript != "":
		for _, l := range wrapText(snap.Transcript, width-4) {
			if recording {
				body = append(body, ui.LiveTextStyle.Render(l))
			} else {
				body = append(body, l)
			}
		}
	case recording:
		body = append(body, ui.DimStyle.Render("Start speaking..."))
	default:
		body = append(body, ui.DimStyle.Render("No transcript yet."))
	}

	card := ui.CardStyle
	if recording {
		card = ui.RecordingCardStyle
	}
	return title + "\n" + card.Width(width-2).Render(strings.Join(body, "\n"))
}

func renderEvaluation(ev api.Evaluation, width int) string {
	var lines []string
	lines = append(lines, ui.SectionTitleStyle.Render("Evaluation"))
	lines = append(lines, renderScoreBar("Technical", ev.TechnicalScore, ui.TechnicalColor))
	lines = append(lines, renderScoreBar("Clarity", ev.ClarityScore, ui.ClarityColor))
	lines = append(lines, renderScoreBar("Structure", ev.StructureScore, ui.StructureColor))
	lines = append(lines, renderScoreBar("Relevance", ev.RelevanceScore, ui.RelevanceColor))

	lines = append(lines, renderNote(ui.StrengthStyle.Render("Strengths"), ev.Strengths, width)...)
	lines = append(lines, renderNote(ui.WeaknessStyle.Render("Weaknesses"), ev.Weaknesses, width)...)
	lines = append(lines, renderNote(ui.TipStyle.Render("Tip"), ev.ImprovementTip, width)...)
	return strings.Join(lines, "\n")
}

// renderScoreBar draws a 0-10 score.
func renderScoreBar(label string, score float64, color lipgloss.Color) string {
	filled := int(score + 0.5)
	filled = max(0, min(scoreBarLen, filled))
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		ui.ProgressTrackStyle.Render(strings.Repeat("░", scoreBarLen-filled))
	return padRight(ui.DimStyle.Render(label), 11) + bar + " " + fmt.Sprintf("%g/10", score)
}

func renderNote(title, text string, width int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lines := []string{title}
	for _, l := range wrapText(text, width-2) {
		lines = append(lines, "  "+l)
	}
	return lines
}

func (m Model) renderReport() string {
	if m.report == nil {
		return ""
	}
	r := m.report
	w := m.contentWidth()

	var lines []string
	lines = append(lines, "")
	lines = append(lines, ui.SectionTitleStyle.Render("Interview Report"))
	score := lipgloss.NewStyle().Bold(true).Foreground(ui.ScoreColor(r.OverallScore)).
		Render(fmt.Sprintf("%.0f/100", r.OverallScore))
	badge := ui.BadgeStyle(ui.RecommendationColor(string(r.HireRecommendation))).
		Render(string(r.HireRecommendation))
	lines = append(lines, "Overall score "+score+"  "+badge)
	lines = append(lines, "")

	lines = append(lines, renderNote(ui.SectionTitleStyle.Render("Summary"), r.Summary, w)...)
	lines = append(lines, renderNote(ui.StrengthStyle.Render("Strong Areas"), r.StrongAreas, w)...)
	lines = append(lines, renderNote(ui.WeaknessStyle.Render("Areas to Improve"), r.WeakAreas, w)...)
	lines = append(lines, renderNote(ui.TipStyle.Render("Improvement Roadmap"), r.ImprovementRoadmap, w)...)

	if len(m.history) > 0 {
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render(fmt.Sprintf("%d questions answered", len(m.history))))
	}
	if m.savedID != "" {
		lines = append(lines, ui.DimStyle.Render(truncateToWidth("Saved as "+m.savedID, w)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderErrorBar(msg string) string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(msg)
}

func (m Model) renderFooter() string {
	var parts []string
	key := func(k, desc string) {
		parts = append(parts, ui.FooterKeyStyle.Render(k)+ui.FooterDescStyle.Render(" "+desc))
	}

	switch m.phase {
	case PhaseUpload:
		switch {
		case m.uploading:
		case m.upload != nil:
			key("Enter", "Start Interview")
			key("q", "Quit")
		default:
			key("Enter", "Upload & Analyze")
			key("Esc", "Quit")
		}
		return strings.Join(parts, "  ")

	case PhaseInterview:
		if m.ctrl != nil {
			snap := m.ctrl.Snapshot()
			if snap.Supported && !snap.Finished {
				switch snap.State {
				case session.Recording:
					key("Space", "Stop Recording")
				case session.Idle:
					if snap.Transcript == "" {
						key("Space", "Start Answer")
					} else {
						key("r", "Re-record")
						key("Enter", "Submit Answer")
					}
				}
			}
		}

	case PhaseReport:
		key("n", "Start New Interview")
	}

	key("q", "Quit")
	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Keep the tail so the file name stays visible.
	runes := []rune(s)
	if width > 1 && len(runes) > width-1 {
		return "…" + string(runes[len(runes)-(width-1):])
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
