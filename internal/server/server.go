package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ironsheep/vision-tools-mcp/internal/config"
	"github.com/ironsheep/vision-tools-mcp/internal/gradio"
	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
	"github.com/ironsheep/vision-tools-mcp/internal/results"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2024-11-05"

// Server handles MCP protocol communication
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	invoker   *gradio.Invoker
	extractor *results.Extractor
	version   string

	// Guards writes to the response stream.
	mu sync.Mutex
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// New creates a server backed by cfg. A nil cfg means config.Default().
func New(cfg *config.Config, logger *zap.Logger, version string) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}

	client := &http.Client{}
	resolver := imaging.NewResolver(client, logger.Named("resolver"))
	return &Server{
		cfg:       cfg,
		logger:    logger,
		invoker:   gradio.NewInvoker(resolver, client, cfg.FnIndex, logger.Named("gradio")),
		extractor: results.NewExtractor(client, logger.Named("results")),
		version:   version,
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(context.Background(), os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC message per line from r and writes responses to w.
//
// tools/call requests run on their own goroutine so a slow backend does not
// hold up other messages; responses may therefore arrive out of order.
// Serve returns once r is exhausted and every in-flight call has answered.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Inline images make for large lines.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)
	var wg sync.WaitGroup
	defer wg.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", zap.Error(err))
			s.write(encoder, errorResponse(nil, codeParseError, "Parse error", err.Error()))
			continue
		}

		if req.Method == "tools/call" {
			wg.Add(1)
			go func(req MCPRequest) {
				defer wg.Done()
				s.write(encoder, s.handleRequest(ctx, &req))
			}(req)
			continue
		}
		s.write(encoder, s.handleRequest(ctx, &req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) write(encoder *json.Encoder, resp *MCPResponse) {
	if resp == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := encoder.Encode(resp); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	if strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug("notification", zap.String("method", req.Method))
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "prompts/list":
		return s.handlePromptsList(req)
	case "prompts/get":
		return s.handlePromptsGet(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools":   map[string]interface{}{},
				"prompts": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "vision-tools-mcp",
				"version": s.version,
			},
		},
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}
