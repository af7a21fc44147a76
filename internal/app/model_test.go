package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/loop"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/session"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech/speechtest"
)

// fakeClient asks two questions and then sends the final report.
type fakeClient struct {
	mu        sync.Mutex
	uploadErr error
	requests  []api.EvaluateRequest
}

func (f *fakeClient) UploadResume(ctx context.Context, path string) (*api.UploadResponse, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &api.UploadResponse{SessionID: "sess-1", FirstQuestion: "Tell me about yourself"}, nil
}

func (f *fakeClient) EvaluateAnswer(ctx context.Context, req api.EvaluateRequest) (*api.EvaluateResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	resp := &api.EvaluateResponse{
		Evaluation:    api.Evaluation{TechnicalScore: 7, ClarityScore: 8, StructureScore: 6, RelevanceScore: 9, Strengths: "Concrete examples"},
		QuestionCount: len(req.PreviousQuestions) + 1,
	}
	if len(req.PreviousQuestions) == 0 {
		resp.NextQuestion = "Why Go?"
		return resp, nil
	}
	resp.FinalReport = &api.FinalReport{
		OverallScore:       72,
		HireRecommendation: api.Recommend,
		Summary:            "Solid fundamentals",
	}
	return resp, nil
}

type fakeStore struct {
	saved []*db.Interview
	err   error
}

func (f *fakeStore) SaveInterview(iv *db.Interview) error {
	if f.err != nil {
		return f.err
	}
	iv.ID = "iv-1"
	f.saved = append(f.saved, iv)
	return nil
}

type harness struct {
	eng    *speechtest.Engine
	client *fakeClient
	store  *fakeStore
}

func newTestModel(t *testing.T, probe speech.Probe) (Model, *harness) {
	t.Helper()
	h := &harness{eng: speechtest.New(), client: &fakeClient{}, store: &fakeStore{}}
	m := New(Options{
		Client: h.client,
		NewCapture: func(p loop.Poster) session.Capture {
			return speech.NewAdapter(h.eng, p, "", nil)
		},
		Probe:   probe,
		Store:   h.store,
		Session: session.Config{CompletionDelay: 10 * time.Millisecond},
	})
	t.Cleanup(func() { m.teardown() })
	m, _ = applyUpdate(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, h
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case KeyEnter:
		return tea.KeyMsg{Type: tea.KeyEnter}
	case KeySpace:
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case KeyBackspace:
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case KeyEsc:
		return tea.KeyMsg{Type: tea.KeyEsc}
	case KeyCtrlC:
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func typeText(m Model, text string) Model {
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// pump runs posted closures until done reports true.
func pump(t *testing.T, m Model, done func(Model) bool) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	deadline := time.After(2 * time.Second)
	for !done(m) {
		select {
		case fn := <-m.queue.C():
			m, cmd = applyUpdate(m, postedMsg{fn: fn})
		case <-deadline:
			t.Fatal("timed out waiting for model state")
		}
	}
	return m, cmd
}

// startInterview uploads a resume and enters the interview.
func startInterview(t *testing.T, m Model) Model {
	t.Helper()
	m = typeText(m, "resume.pdf")
	m, cmd := applyUpdate(m, keyMsg(KeyEnter))
	if cmd == nil {
		t.Fatal("Enter should start the upload")
	}
	m, _ = applyUpdate(m, cmd())
	m, _ = applyUpdate(m, keyMsg(KeyEnter))
	if m.phase != PhaseInterview {
		t.Fatalf("phase = %d, want interview", m.phase)
	}
	return m
}

// answer records text and submits it.
func answer(t *testing.T, m Model, h *harness, text string) Model {
	t.Helper()
	m, _ = applyUpdate(m, keyMsg(KeySpace))
	if m.ctrl.State() != session.Recording {
		t.Fatalf("state = %s, want recording", m.ctrl.State())
	}
	h.eng.Final(text)
	m, _ = pump(t, m, func(m Model) bool { return m.ctrl.Snapshot().Transcript != "" })
	m, _ = applyUpdate(m, keyMsg(KeySpace))
	m, _ = applyUpdate(m, keyMsg(KeyEnter))
	if m.ctrl.State() != session.Evaluating {
		t.Fatalf("state = %s, want evaluating", m.ctrl.State())
	}
	return m
}

func TestNewModel(t *testing.T) {
	m := New(Options{ResumePath: "cv.pdf"})
	defer m.teardown()

	if m.phase != PhaseUpload {
		t.Errorf("phase = %d, want upload", m.phase)
	}
	if m.path != "cv.pdf" {
		t.Errorf("path = %q, want preset resume path", m.path)
	}
	if m.ctrl != nil {
		t.Error("new model should not have a session")
	}
}

func TestTypingEditsPath(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = typeText(m, "my")
	m, _ = applyUpdate(m, keyMsg(KeySpace))
	m = typeText(m, "cv.pdfx")
	m, _ = applyUpdate(m, keyMsg(KeyBackspace))

	if m.path != "my cv.pdf" {
		t.Errorf("path = %q, want %q", m.path, "my cv.pdf")
	}

	// q is text on the upload screen, not quit.
	m, cmd := applyUpdate(m, keyMsg("q"))
	if cmd != nil {
		t.Error("q should not quit while typing a path")
	}
	if !strings.HasSuffix(m.path, "q") {
		t.Errorf("path = %q, want trailing q", m.path)
	}
}

func TestUploadValidation(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"no file", "", noFileMessage},
		{"blank", "   ", noFileMessage},
		{"wrong extension", "notes.txt", api.ErrUnsupportedFormat.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(t, nil)
			m.path = tt.path

			m, cmd := applyUpdate(m, keyMsg(KeyEnter))
			if cmd != nil {
				t.Error("invalid path should not upload")
			}
			if m.uploading {
				t.Error("should not be uploading")
			}
			if m.errorMessage != tt.want {
				t.Errorf("error = %q, want %q", m.errorMessage, tt.want)
			}
		})
	}
}

func TestUploadSuccess(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = typeText(m, "/tmp/resume.docx")

	m, cmd := applyUpdate(m, keyMsg(KeyEnter))
	if !m.uploading {
		t.Fatal("should be uploading")
	}
	if !strings.Contains(m.View(), "Analyzing Resume...") {
		t.Error("view should show the upload in progress")
	}

	msg, ok := cmd().(ResumeUploadedMsg)
	if !ok {
		t.Fatalf("upload cmd returned %T", cmd())
	}
	if msg.Name != "resume.docx" {
		t.Errorf("name = %q, want base name", msg.Name)
	}

	m, _ = applyUpdate(m, msg)
	if m.uploading || m.upload == nil {
		t.Fatal("upload should be complete")
	}
	if !strings.Contains(m.View(), "Resume analyzed successfully") {
		t.Error("view should confirm the upload")
	}
}

func TestUploadError(t *testing.T) {
	m, h := newTestModel(t, nil)
	h.client.uploadErr = &api.UploadError{Status: 400, Detail: "Could not extract text from resume"}
	m = typeText(m, "resume.pdf")

	m, cmd := applyUpdate(m, keyMsg(KeyEnter))
	m, _ = applyUpdate(m, cmd())

	if m.uploading {
		t.Error("uploading should be cleared")
	}
	if m.errorMessage != "Could not extract text from resume" {
		t.Errorf("error = %q", m.errorMessage)
	}
	if m.phase != PhaseUpload {
		t.Error("should stay on the upload screen")
	}
}

func TestStartInterview(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = startInterview(t, m)

	snap := m.ctrl.Snapshot()
	if snap.Question != "Tell me about yourself" || snap.Number != 1 {
		t.Errorf("question = %q #%d", snap.Question, snap.Number)
	}
	view := m.View()
	for _, want := range []string{"Question 1/5", "Tell me about yourself", "No transcript yet.", "Start Answer"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRecordingView(t *testing.T) {
	m, h := newTestModel(t, nil)
	m = startInterview(t, m)

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	view := m.View()
	for _, want := range []string{"Listening...", "Start speaking...", "90s remaining", "Stop Recording"} {
		if !strings.Contains(view, want) {
			t.Errorf("recording view missing %q", want)
		}
	}

	h.eng.Final("I build distributed caches")
	m, _ = pump(t, m, func(m Model) bool { return m.ctrl.Snapshot().Transcript != "" })
	if !strings.Contains(m.View(), "I build distributed caches") {
		t.Error("view should show the live transcript")
	}

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	view = m.View()
	if !strings.Contains(view, "Re-record") || !strings.Contains(view, "Submit Answer") {
		t.Error("stopped view should offer re-record and submit")
	}

	// Space does not discard a finished transcript.
	m, _ = applyUpdate(m, keyMsg(KeySpace))
	if m.ctrl.State() != session.Idle {
		t.Errorf("state = %s, want idle", m.ctrl.State())
	}

	m, _ = applyUpdate(m, keyMsg(KeyReRecord))
	if m.ctrl.State() != session.Recording {
		t.Errorf("r should re-record, state = %s", m.ctrl.State())
	}
	if m.ctrl.Snapshot().Transcript != "" {
		t.Error("re-record should clear the transcript")
	}
}

func TestSubmitEmptyAnswer(t *testing.T) {
	m, h := newTestModel(t, nil)
	m = startInterview(t, m)

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	m, _ = applyUpdate(m, keyMsg(KeySpace))
	m, _ = applyUpdate(m, keyMsg(KeyEnter))

	if m.ctrl.State() != session.Idle {
		t.Errorf("state = %s, want idle", m.ctrl.State())
	}
	if !strings.Contains(m.View(), "No transcript detected") {
		t.Error("view should show the empty answer error")
	}
	if len(h.client.requests) != 0 {
		t.Error("empty answer should not be submitted")
	}
}

func TestInterviewToReport(t *testing.T) {
	m, h := newTestModel(t, nil)
	m = startInterview(t, m)

	m = answer(t, m, h, "I build distributed caches")
	if !strings.Contains(m.View(), "Evaluating your answer...") {
		t.Error("view should show evaluation in progress")
	}
	m, _ = pump(t, m, func(m Model) bool { return m.ctrl.Snapshot().Number == 2 })

	view := m.View()
	for _, want := range []string{"Question 2/5", "Why Go?", "Technical", "Concrete examples"} {
		if !strings.Contains(view, want) {
			t.Errorf("view after first answer missing %q", want)
		}
	}

	m = answer(t, m, h, "Simplicity and tooling")
	m, cmd := pump(t, m, func(m Model) bool { return m.phase == PhaseReport })

	if m.ctrl != nil {
		t.Error("session should be closed on the report screen")
	}
	if m.report == nil || m.report.OverallScore != 72 {
		t.Fatalf("report = %+v", m.report)
	}
	if len(m.history) != 2 {
		t.Errorf("history = %d turns, want 2", len(m.history))
	}

	view = m.View()
	for _, want := range []string{"Interview Report", "72/100", "Recommend", "Solid fundamentals", "Start New Interview"} {
		if !strings.Contains(view, want) {
			t.Errorf("report view missing %q", want)
		}
	}

	second := h.client.requests[1]
	if len(second.PreviousQuestions) != 1 || second.PreviousAnswers[0] != "I build distributed caches" {
		t.Errorf("second request history = %+v / %+v", second.PreviousQuestions, second.PreviousAnswers)
	}

	// The batch is [wait for queue, save interview].
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("report transition cmd = %T, want a two-command batch", cmd())
	}
	saved, ok := batch[1]().(InterviewSavedMsg)
	if !ok {
		t.Fatal("second command should save the interview")
	}
	m, _ = applyUpdate(m, saved)

	if len(h.store.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(h.store.saved))
	}
	iv := h.store.saved[0]
	if iv.SessionID != "sess-1" || iv.ResumeName != "resume.pdf" {
		t.Errorf("saved interview = %+v", iv)
	}
	if len(iv.Answers) != 2 || iv.Answers[1].Question != "Why Go?" {
		t.Errorf("saved answers = %+v", iv.Answers)
	}
	if !strings.Contains(m.View(), "Saved as iv-1") {
		t.Error("report should show the saved id")
	}
}

func TestNewInterviewReturnsToUpload(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.path = "resume.pdf"
	m.phase = PhaseReport
	m.report = &api.FinalReport{OverallScore: 40, HireRecommendation: api.Consider}

	m, _ = applyUpdate(m, keyMsg(KeyNewInterview))

	if m.phase != PhaseUpload {
		t.Errorf("phase = %d, want upload", m.phase)
	}
	if m.report != nil || m.upload != nil {
		t.Error("report and upload should be cleared")
	}
	if m.path != "resume.pdf" {
		t.Errorf("path = %q, should be kept", m.path)
	}
}

func TestUnsupportedSpeech(t *testing.T) {
	m, _ := newTestModel(t, speech.StaticProbe(speech.Unavailable))
	m = startInterview(t, m)

	m, _ = applyUpdate(m, keyMsg(KeySpace))
	if m.ctrl.State() != session.Idle {
		t.Errorf("state = %s, want idle", m.ctrl.State())
	}
	view := m.View()
	if !strings.Contains(view, "does not support speech recognition") {
		t.Error("view should show the unsupported notice")
	}
	if strings.Contains(view, "Start Answer") {
		t.Error("unsupported view should not offer recording")
	}
}

func TestSaveErrorIsTransient(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, cmd := applyUpdate(m, SaveErrorMsg{Err: errors.New("disk full")})
	if cmd == nil {
		t.Error("save error should schedule a clear")
	}
	if !strings.Contains(m.errorMessage, "disk full") {
		t.Errorf("error = %q", m.errorMessage)
	}

	m, _ = applyUpdate(m, ClearTransientErrorMsg{})
	if m.errorMessage != "" {
		t.Error("transient error should clear")
	}
}

func TestPersistentErrorSurvivesClear(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = applyUpdate(m, keyMsg(KeyEnter))
	m, _ = applyUpdate(m, ClearTransientErrorMsg{})
	if m.errorMessage != noFileMessage {
		t.Errorf("error = %q, want it kept", m.errorMessage)
	}
}

func TestQuitClosesQueue(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = startInterview(t, m)
	m, _ = applyUpdate(m, keyMsg(KeySpace))

	m, cmd := applyUpdate(m, keyMsg(KeyCtrlC))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.ctrl != nil {
		t.Error("session should be closed")
	}
	select {
	case <-m.queue.Done():
	default:
		t.Error("queue should be closed")
	}
	m.queue.Drain()
	if waitPostedCmd(m.queue)() != nil {
		t.Error("wait on a closed queue should return nil")
	}
}

func TestViewWithoutSize(t *testing.T) {
	m := New(Options{})
	defer m.teardown()
	if view := m.View(); view != "Initializing..." {
		t.Errorf("view without size = %q, want 'Initializing...'", view)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"a\nb", 10, []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestTruncateKeepsTail(t *testing.T) {
	got := truncateToWidth("/home/me/documents/resume.pdf", 11)
	if got != "…resume.pdf" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncateToWidth("cv.pdf", 11); got != "cv.pdf" {
		t.Errorf("short path = %q", got)
	}
}
