package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	defaultUploadDetail   = "Failed to upload resume"
	defaultEvaluateDetail = "Failed to evaluate answer"
)

// ErrUnsupportedFormat is returned for resumes that are not PDF or Word
// documents.
var ErrUnsupportedFormat = errors.New("Please upload a PDF or DOCX file.")

// UploadError is returned when the resume upload fails. Detail is the
// server's message when it sent one.
type UploadError struct {
	Status int
	Detail string
	Err    error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *UploadError) Unwrap() error { return e.Err }

// EvaluationError is returned when answer evaluation fails.
type EvaluationError struct {
	Status int
	Detail string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// errorBody is the failure payload. detail is usually a string but
// validation failures carry a list, which falls back to the generic message.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// parseDetail extracts the server's detail message, or returns fallback.
func parseDetail(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return fallback
	}
	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err != nil || detail == "" {
		return fallback
	}
	return detail
}
