package gradio

import "github.com/ironsheep/vision-tools-mcp/internal/request"

// Backend defaults for fields the tools do not expose.
const (
	DefaultIOUThreshold = 0.5
	DefaultScribbleMode = "split"
)

// ImageInput is the image-with-mask pair the backend takes as its first argument.
type ImageInput struct {
	Image string `json:"image"`
	Mask  string `json:"mask"`
}

// Payload is the typed form of the backend's positional argument list.
type Payload struct {
	Input         ImageInput
	TextPrompt    string
	TaskType      string
	InpaintPrompt string
	BoxThreshold  float64
	TextThreshold float64
	IOUThreshold  float64
	InpaintMode   string
	ScribbleMode  string
	AuthKey       string
}

// NewPayload fills a Payload from a validated request, injecting defaults.
// image and mask must already be data URIs.
func NewPayload(image, mask string, req *request.ToolRequest, taskType string) Payload {
	mode := req.InpaintMode
	if mode == "" {
		mode = request.DefaultInpaintMode
	}
	return Payload{
		Input:         ImageInput{Image: image, Mask: mask},
		TextPrompt:    req.TextPrompt,
		TaskType:      taskType,
		InpaintPrompt: req.InpaintPrompt,
		BoxThreshold:  req.BoxThresholdOrDefault(),
		TextThreshold: req.TextThresholdOrDefault(),
		IOUThreshold:  DefaultIOUThreshold,
		InpaintMode:   mode,
		ScribbleMode:  DefaultScribbleMode,
	}
}

// Args returns the arguments in the exact order the backend expects.
// The backend reads them by position only; do not reorder.
func (p Payload) Args() []any {
	return []any{
		p.Input,
		p.TextPrompt,
		p.TaskType,
		p.InpaintPrompt,
		p.BoxThreshold,
		p.TextThreshold,
		p.IOUThreshold,
		p.InpaintMode,
		p.ScribbleMode,
		p.AuthKey,
	}
}
