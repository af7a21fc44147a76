// Package mcptools exposes the interview history to MCP clients.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
)

const defaultListLimit = 20

// History is the part of the store the tools read from.
type History interface {
	Interviews(limit int) ([]db.Interview, error)
	Interview(id string) (*db.Interview, error)
}

// Tools holds the tool handlers.
type Tools struct {
	history History
	logger  *zap.Logger
}

// New creates the handlers. logger may be nil.
func New(history History, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{history: history, logger: logger}
}

// NewServer builds an MCP server with the history tools registered.
func NewServer(history History, version string, logger *zap.Logger) *server.MCPServer {
	t := New(history, logger)
	s := server.NewMCPServer("interview-agent", version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_interviews",
		mcp.WithDescription("List completed mock interviews, newest first, with their overall score and hire recommendation."),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of interviews to return (default %d).", defaultListLimit)),
		),
	), t.ListInterviews)

	s.AddTool(mcp.NewTool("get_interview",
		mcp.WithDescription("Get one completed interview with its final report and every answered question with its evaluation."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Interview id or a unique prefix of it."),
		),
	), t.GetInterview)

	return s
}

// Serve runs the MCP server over stdio until the client disconnects.
func Serve(history History, version string, logger *zap.Logger) error {
	return server.ServeStdio(NewServer(history, version, logger))
}

// ListInterviews handles list_interviews.
func (t *Tools) ListInterviews(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}

	interviews, err := t.history.Interviews(limit)
	if err != nil {
		t.logger.Error("list interviews", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("list interviews: %v", err)), nil
	}
	if interviews == nil {
		interviews = []db.Interview{}
	}
	return jsonResult(interviews)
}

// GetInterview handles get_interview.
func (t *Tools) GetInterview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	iv, err := t.history.Interview(id)
	switch {
	case errors.Is(err, db.ErrAmbiguousID):
		return mcp.NewToolResultError(fmt.Sprintf("id %q matches more than one interview", id)), nil
	case err != nil:
		t.logger.Error("get interview", zap.String("id", id), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("get interview: %v", err)), nil
	case iv == nil:
		return mcp.NewToolResultError(fmt.Sprintf("interview %q not found", id)), nil
	}
	return jsonResult(iv)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
