package server

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	names := make([]string, len(tools))
	for i, tool := range tools {
		names[i] = tool.Name
	}
	assert.Equal(t, []string{"detect", "segment", "inpaint"}, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Title)
			assert.Contains(t, tool.Description, "English")
			assert.Equal(t, "object", tool.InputSchema["type"])

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok, "properties should be a map")
			for _, name := range []string{"endpointUrl", "image", "text_prompt", "box_threshold", "text_threshold"} {
				assert.Contains(t, props, name)
			}

			required, ok := tool.InputSchema["required"].([]string)
			require.True(t, ok, "required should be []string")
			assert.Contains(t, required, "image")
			for _, r := range required {
				assert.Contains(t, props, r, "required property %s is not defined", r)
			}
		})
	}
}

func TestToolDefinitions_InpaintFields(t *testing.T) {
	inpaint := GetToolDefinitions()[2]
	props := inpaint.InputSchema["properties"].(map[string]interface{})

	mode := props["inpaint_mode"].(map[string]interface{})
	assert.Equal(t, []string{"merge", "first"}, mode["enum"])
	assert.Equal(t, "merge", mode["default"])

	prompt := props["inpaint_prompt"].(map[string]interface{})
	assert.Equal(t, 300, prompt["maxLength"])
	assert.Contains(t, inpaint.InputSchema["required"], "inpaint_prompt")
}

func TestToolDefinitions_SchemaPatterns(t *testing.T) {
	props := GetToolDefinitions()[0].InputSchema["properties"].(map[string]interface{})
	image := regexp.MustCompile(props["image"].(map[string]interface{})["pattern"].(string))
	labels := regexp.MustCompile(props["text_prompt"].(map[string]interface{})["pattern"].(string))

	for _, ok := range []string{"HTTPS://x/a.png", "http://x/a.png", `C:\a.png`, "./a.png", "../a.png", "/a.png"} {
		assert.True(t, image.MatchString(ok), ok)
	}
	for _, bad := range []string{"a.png", "ftp://x/a.png", "~/a.png"} {
		assert.False(t, image.MatchString(bad), bad)
	}

	assert.True(t, labels.MatchString("cat . dog-house 2"))
	assert.False(t, labels.MatchString("cat, dog"))
}

func TestHandleToolsList(t *testing.T) {
	s := testServer(t, "http://localhost:7589")

	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	b, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var decoded struct {
		Tools []struct {
			Name        string                 `json:"name"`
			Title       string                 `json:"title"`
			InputSchema map[string]interface{} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Len(t, decoded.Tools, 3)
	assert.Equal(t, "detect", decoded.Tools[0].Name)
	assert.NotEmpty(t, decoded.Tools[0].InputSchema)
}
