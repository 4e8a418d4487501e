package server

import (
	"github.com/ironsheep/vision-tools-mcp/internal/request"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

const englishOnlyNote = "Note: text fields only accept English. Use the vision-tool-system prompt to translate other languages first."

// Shared property schemas.
var (
	endpointProperty = map[string]interface{}{
		"type":        "string",
		"format":      "uri",
		"pattern":     "^https?://",
		"description": "Inference backend base URL. Defaults to the configured endpoint (http://localhost:7589)",
	}
	imageProperty = map[string]interface{}{
		"type":        "string",
		"pattern":     `^(?:[Hh][Tt][Tt][Pp][Ss]?://|[A-Za-z]:[\\/]|\.{1,2}/|/)`,
		"description": "Image URL (http/https) or local path (absolute, ./ or ../)",
	}
	boxThresholdProperty = map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"maximum":     1,
		"default":     request.DefaultBoxThreshold,
		"description": "Detection box filter threshold, default 0.3",
	}
	textThresholdProperty = map[string]interface{}{
		"type":        "number",
		"minimum":     0,
		"maximum":     1,
		"default":     request.DefaultTextThreshold,
		"description": "Phrase extraction threshold, default 0.25",
	}
)

func labelProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"maxLength":   request.MaxTextPromptLen,
		"pattern":     `^[A-Za-z0-9 .\-]*$`,
		"default":     "",
		"description": description,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        string(request.KindDetect),
			Title:       "Object detection (Grounding DINO)",
			Description: "Detect objects described by a text prompt and render their boxes and labels (task_type=det). " + englishOnlyNote,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"endpointUrl":    endpointProperty,
					"image":          imageProperty,
					"text_prompt":    labelProperty("English target labels, multiple labels separated by ' . '"),
					"box_threshold":  boxThresholdProperty,
					"text_threshold": textThresholdProperty,
				},
				"required": []string{"image"},
			},
		},
		{
			Name:        string(request.KindSegment),
			Title:       "Segmentation (Grounding DINO + SAM)",
			Description: "Text-guided segmentation: DINO finds boxes, SAM produces masks and the masks are overlaid (task_type=seg). " + englishOnlyNote,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"endpointUrl":    endpointProperty,
					"image":          imageProperty,
					"text_prompt":    labelProperty("English target labels, multiple labels separated by ' . '"),
					"box_threshold":  boxThresholdProperty,
					"text_threshold": textThresholdProperty,
				},
				"required": []string{"image"},
			},
		},
		{
			Name:        string(request.KindInpaint),
			Title:       "Inpainting (Stable Diffusion)",
			Description: "Mask the objects named by text_prompt with SAM and repaint them with Stable Diffusion following inpaint_prompt (task_type=inpainting). " + englishOnlyNote,
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"endpointUrl": endpointProperty,
					"image":       imageProperty,
					"text_prompt": labelProperty("English text locating the object to replace"),
					"inpaint_prompt": map[string]interface{}{
						"type":        "string",
						"minLength":   1,
						"maxLength":   request.MaxInpaintPromptLen,
						"pattern":     `^[\x20-\x7E]+$`,
						"description": "English description of what the masked area should become",
					},
					"box_threshold":  boxThresholdProperty,
					"text_threshold": textThresholdProperty,
					"inpaint_mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"merge", "first"},
						"default":     request.DefaultInpaintMode,
						"description": "merge inpaints all masks at once, first only the first mask",
					},
				},
				"required": []string{"image", "inpaint_prompt"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
