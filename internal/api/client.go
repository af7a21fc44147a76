package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/metrics"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is where the evaluation service listens in development.
	DefaultBaseURL = "http://localhost:8000"

	uploadPath   = "/upload-resume"
	evaluatePath = "/evaluate-answer"
	contentType  = "application/json"
	userAgent    = "interview-agent"
)

var resumeExtensions = map[string]bool{
	"pdf":  true,
	"docx": true,
	"doc":  true,
}

// Client talks to the evaluation service. Calls carry no timeout; they end
// when the service answers or the context is cancelled.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a client for baseURL. logger and m may be nil.
func New(baseURL string, logger *zap.Logger, m *metrics.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		UserAgent:  userAgent,
		logger:     logger,
		metrics:    m,
	}
}

// ValidateResumeName checks the file extension only.
func ValidateResumeName(name string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if !resumeExtensions[ext] {
		return ErrUnsupportedFormat
	}
	return nil
}

// UploadResume uploads the resume at path and starts a session.
func (c *Client) UploadResume(ctx context.Context, path string) (*UploadResponse, error) {
	if err := ValidateResumeName(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resume: %w", err)
	}
	defer f.Close()

	return c.UploadResumeReader(ctx, filepath.Base(path), f)
}

// UploadResumeReader uploads a resume read from r under the given file name.
func (c *Client) UploadResumeReader(ctx context.Context, name string, r io.Reader) (*UploadResponse, error) {
	if err := ValidateResumeName(name); err != nil {
		return nil, err
	}

	var b bytes.Buffer
	w := multipart.NewWriter(&b)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read resume: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+uploadPath, &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out UploadResponse
	status, body, err := c.do(req, "upload-resume")
	if err != nil {
		return nil, &UploadError{Detail: defaultUploadDetail, Err: err}
	}
	if !success(status) {
		return nil, &UploadError{Status: status, Detail: parseDetail(body, defaultUploadDetail)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &UploadError{Status: status, Detail: defaultUploadDetail, Err: err}
	}

	c.logger.Info("resume uploaded",
		zap.String("file", name),
		zap.String("session", out.SessionID))
	return &out, nil
}

// EvaluateAnswer submits the current answer with the session history.
func (c *Client) EvaluateAnswer(ctx context.Context, in EvaluateRequest) (*EvaluateResponse, error) {
	if in.PreviousQuestions == nil {
		in.PreviousQuestions = []string{}
	}
	if in.PreviousAnswers == nil {
		in.PreviousAnswers = []string{}
	}

	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+evaluatePath, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out EvaluateResponse
	status, body, err := c.do(req, "evaluate-answer")
	if err != nil {
		return nil, &EvaluationError{Detail: defaultEvaluateDetail, Err: err}
	}
	if !success(status) {
		return nil, &EvaluationError{Status: status, Detail: parseDetail(body, defaultEvaluateDetail)}
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &EvaluationError{Status: status, Detail: defaultEvaluateDetail, Err: err}
	}

	c.logger.Debug("answer evaluated",
		zap.String("session", in.SessionID),
		zap.Int("question_count", out.QuestionCount),
		zap.Bool("final", out.IsFinal()))
	return &out, nil
}

// do sends req and reads the whole body.
func (c *Client) do(req *http.Request, endpoint string) (int, []byte, error) {
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.metrics.APICall(endpoint, time.Since(start), err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.APICall(endpoint, time.Since(start), err)
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	var callErr error
	if !success(resp.StatusCode) {
		callErr = fmt.Errorf("bad status: %s", resp.Status)
		c.logger.Debug("request failed",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
	}
	c.metrics.APICall(endpoint, time.Since(start), callErr)

	return resp.StatusCode, body, nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
