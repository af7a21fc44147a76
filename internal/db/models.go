// Package db stores completed interviews in a local SQLite database.
package db

import (
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
)

// Interview is one completed interview with its final report.
type Interview struct {
	ID          string          `json:"id" yaml:"id"`
	SessionID   string          `json:"session_id" yaml:"session_id"`
	ResumeName  string          `json:"resume_name,omitempty" yaml:"resume_name,omitempty"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time       `json:"completed_at" yaml:"completed_at"`
	Report      api.FinalReport `json:"report" yaml:"report"`
	// Answers is only loaded by Store.Interview.
	Answers []Answer `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// Answer is one answered question of an interview.
type Answer struct {
	SequenceNumber int            `json:"sequence" yaml:"sequence"`
	Question       string         `json:"question" yaml:"question"`
	Answer         string         `json:"answer" yaml:"answer"`
	Evaluation     api.Evaluation `json:"evaluation" yaml:"evaluation"`
}
