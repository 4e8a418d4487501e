package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/vision-tools-mcp/internal/results"
)

// SystemPromptName is the prompt that turns a free-form request into
// English-only tool arguments.
const SystemPromptName = "vision-tool-system"

// Prompt represents an MCP prompt definition
type Prompt struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type PromptMessage struct {
	Role    string          `json:"role"`
	Content results.Content `json:"content"`
}

type promptGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

const systemPromptText = "You are a parameter generator for an AI vision MCP tool.\n" +
	"Convert the user's request to English-only parameters.\n" +
	"- Parameter rules:\n" +
	"  - text_prompt: English-only target labels. If multiple, separate using ' . ' (space dot space).\n" +
	"  - inpaint_prompt: English-only description of the desired result.\n" +
	"  - image: keep original URL/path.\n" +
	"- Do not include explanations. Output concise English.\n"

// GetPromptDefinitions returns all available prompts
func GetPromptDefinitions() []Prompt {
	return []Prompt{
		{
			Name:        SystemPromptName,
			Title:       "Vision tool system prompt",
			Description: "Convert a request into English tool parameters, with text_prompt labels separated by ' . '",
			Arguments: []PromptArgument{
				{Name: "request", Description: "The user's natural-language request, possibly not in English", Required: true},
			},
		},
	}
}

// systemPromptMessages renders the vision-tool-system prompt for request.
func systemPromptMessages(request string) []PromptMessage {
	user := fmt.Sprintf("User request:\n%s\n\nReturn final English-only values for: image, text_prompt (labels separated by ' . '), inpaint_prompt (if needed).", request)
	return []PromptMessage{
		{Role: "assistant", Content: results.Content{Type: "text", Text: systemPromptText}},
		{Role: "user", Content: results.Content{Type: "text", Text: user}},
	}
}

func (s *Server) handlePromptsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"prompts": GetPromptDefinitions(),
		},
	}
}

func (s *Server) handlePromptsGet(req *MCPRequest) *MCPResponse {
	var params promptGetParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}
	if params.Name != SystemPromptName {
		return errorResponse(req.ID, codeInvalidParams, "Unknown prompt", fmt.Sprintf("unknown prompt: %s", params.Name))
	}
	request, ok := params.Arguments["request"]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, "Invalid params", "missing argument: request")
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"description": GetPromptDefinitions()[0].Description,
			"messages":    systemPromptMessages(request),
		},
	}
}
