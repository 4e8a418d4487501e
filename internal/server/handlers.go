package server

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/vision-tools-mcp/internal/request"
	"github.com/ironsheep/vision-tools-mcp/internal/results"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke: detect, segment or inpaint.
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// Tool failures are reported inside the result with isError set; only an
// unparseable request or an unknown tool name yields a JSON-RPC error.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	kind := request.Kind(params.Name)
	if !kind.Valid() {
		return errorResponse(req.ID, codeInvalidParams, "Unknown tool", fmt.Sprintf("unknown tool: %s", params.Name))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  s.runTool(ctx, kind, params.Arguments),
	}
}

// runTool executes one call of a vision tool: validate, invoke the backend,
// save the returned files and format the outcome. Every error ends up in a
// failure result.
func (s *Server) runTool(ctx context.Context, kind request.Kind, args json.RawMessage) (res *results.ToolResult) {
	start := time.Now()
	logger := s.logger.With(zap.String("tool", string(kind)))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool call panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = results.Failure(fmt.Sprintf("internal error while running %s: %v", kind, r))
		}
	}()

	req, err := request.Validate(kind, args, s.cfg.Endpoint)
	if err != nil {
		logger.Info("rejected tool call", zap.Error(err))
		return results.Failure(err.Error())
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	env, err := s.invoker.Invoke(ctx, req.Endpoint, req, kind.TaskType())
	if err != nil {
		logger.Warn("backend call failed", zap.String("endpoint", req.Endpoint), zap.Error(err))
		return results.Failure(err.Error())
	}

	outputDir := filepath.Join(s.cfg.OutputDir, kind.OutputDir())
	saved, err := s.extractor.Extract(ctx, env, req.Endpoint, outputDir)
	if err != nil {
		logger.Warn("result extraction failed", zap.Int("saved", len(saved)), zap.Error(err))
		return results.Failure(err.Error())
	}

	logger.Info("tool call completed",
		zap.Int("saved", len(saved)),
		zap.Duration("elapsed", time.Since(start)))
	return results.Success(saved)
}
