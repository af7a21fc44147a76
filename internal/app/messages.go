package app

import "github.com/vishalnotfound/AI-Interview-Agent/internal/api"

// ResumeUploadedMsg is sent when the service has parsed the resume and
// opened a session.
type ResumeUploadedMsg struct {
	Name     string
	Response api.UploadResponse
}

// UploadErrorMsg is sent when the resume upload fails.
type UploadErrorMsg struct {
	Err error
}

// postedMsg carries a closure posted by background work (speech events,
// countdown ticks, evaluation results) to run on the update goroutine.
type postedMsg struct {
	fn func()
}

// InterviewSavedMsg is sent once a finished interview is stored.
type InterviewSavedMsg struct {
	ID string
}

// SaveErrorMsg is sent when storing a finished interview fails.
type SaveErrorMsg struct {
	Err error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}
