package results

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Content is one block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the MCP tools/call result envelope.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Success lists the saved files as file:// URIs after a count line.
func Success(saved []string) *ToolResult {
	lines := make([]string, len(saved))
	for i, p := range saved {
		lines[i] = FileURI(p)
	}
	text := fmt.Sprintf("Saved %d result(s):\n%s", len(saved), strings.Join(lines, "\n"))
	return &ToolResult{Content: []Content{{Type: "text", Text: text}}}
}

// Failure wraps message as an error result.
func Failure(message string) *ToolResult {
	return &ToolResult{
		Content: []Content{{Type: "text", Text: message}},
		IsError: true,
	}
}

// FileURI returns "file://" followed by the absolute path with forward
// slashes, whatever the platform separator.
func FileURI(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = p
	}
	return "file://" + strings.ReplaceAll(abs, `\`, "/")
}
