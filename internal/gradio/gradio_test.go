package gradio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
	"github.com/ironsheep/vision-tools-mcp/internal/request"
)

// fakeBackend is a minimal Gradio app serving /config and /run/predict.
type fakeBackend struct {
	*httptest.Server
	predictCalls atomic.Int32
	lastPredict  atomic.Value // predictRequest
	predict      http.HandlerFunc
	configStatus int
	queue        bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{configStatus: http.StatusOK}
	fb.predict = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[[{"is_file":true,"name":"/tmp/det_0.png"}]],"duration":0.4}`))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/config", func(w http.ResponseWriter, _ *http.Request) {
		if fb.configStatus != http.StatusOK {
			http.Error(w, "not a gradio app", fb.configStatus)
			return
		}
		_, _ = fmt.Fprintf(w, `{"version":"3.32.0","enable_queue":%t}`, fb.queue)
	})
	mux.HandleFunc("/run/predict", func(w http.ResponseWriter, r *http.Request) {
		fb.predictCalls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body predictRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		fb.lastPredict.Store(body)
		fb.predict(w, r)
	})
	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) last(t *testing.T) predictRequest {
	t.Helper()
	v, ok := fb.lastPredict.Load().(predictRequest)
	require.True(t, ok, "predict was not called")
	return v
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake image bytes"), 0644))
	return path
}

func newTestInvoker(fb *fakeBackend) *Invoker {
	return NewInvoker(imaging.NewResolver(fb.Client(), nil), fb.Client(), 0, nil)
}

func TestInvoke_PayloadOrderAndDefaults(t *testing.T) {
	fb := newFakeBackend(t)
	img := writeImage(t, "cat.png")

	req := &request.ToolRequest{
		Kind:        request.KindDetect,
		Image:       img,
		TextPrompt:  "cat . dog",
		InpaintMode: request.DefaultInpaintMode,
		Endpoint:    fb.URL,
	}

	env, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "det")
	require.NoError(t, err)
	require.NotNil(t, env)

	body := fb.last(t)
	assert.Equal(t, 0, body.FnIndex)
	assert.NotEmpty(t, body.SessionHash)
	require.Len(t, body.Data, 10)

	input, ok := body.Data[0].(map[string]interface{})
	require.True(t, ok, "first argument must be the image/mask object")
	assert.True(t, strings.HasPrefix(input["image"].(string), "data:image/png;base64,"))
	mask, err := imaging.PlaceholderMask()
	require.NoError(t, err)
	assert.Equal(t, mask, input["mask"])

	assert.Equal(t, "cat . dog", body.Data[1])
	assert.Equal(t, "det", body.Data[2])
	assert.Equal(t, "", body.Data[3])
	assert.Equal(t, 0.3, body.Data[4])
	assert.Equal(t, 0.25, body.Data[5])
	assert.Equal(t, 0.5, body.Data[6])
	assert.Equal(t, "merge", body.Data[7])
	assert.Equal(t, "split", body.Data[8])
	assert.Equal(t, "", body.Data[9])
}

func TestInvoke_InpaintFields(t *testing.T) {
	fb := newFakeBackend(t)
	box, text := 0.6, 0.1

	req := &request.ToolRequest{
		Kind:          request.KindInpaint,
		Image:         "data:image/jpeg;base64,/9j/AA==",
		TextPrompt:    "sofa",
		InpaintPrompt: "a green leather sofa",
		BoxThreshold:  &box,
		TextThreshold: &text,
		InpaintMode:   "first",
	}

	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "inpainting")
	require.NoError(t, err)

	body := fb.last(t)
	input := body.Data[0].(map[string]interface{})
	assert.Equal(t, "data:image/jpeg;base64,/9j/AA==", input["image"], "data URIs are passed through")
	assert.Equal(t, "inpainting", body.Data[2])
	assert.Equal(t, "a green leather sofa", body.Data[3])
	assert.Equal(t, 0.6, body.Data[4])
	assert.Equal(t, 0.1, body.Data[5])
	assert.Equal(t, "first", body.Data[7])
}

func TestInvoke_PredictError(t *testing.T) {
	fb := newFakeBackend(t)
	fb.predict = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"CUDA out of memory"}`))
	}

	req := &request.ToolRequest{Kind: request.KindSegment, Image: "data:image/png;base64,AA=="}
	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "seg")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "predict", invErr.Op)
	assert.Equal(t, http.StatusInternalServerError, invErr.StatusCode)
	assert.Equal(t, "CUDA out of memory", invErr.Message)
	assert.Contains(t, err.Error(), "CUDA out of memory")
}

func TestInvoke_ErrorFieldOn200(t *testing.T) {
	fb := newFakeBackend(t)
	fb.predict = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"ValueError: bad task_type"}`))
	}

	req := &request.ToolRequest{Kind: request.KindSegment, Image: "data:image/png;base64,AA=="}
	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "seg")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "ValueError: bad task_type", invErr.Message)
}

// closeCounter is a RoundTripper that records CloseIdleConnections calls.
type closeCounter struct {
	base   http.RoundTripper
	closes atomic.Int32
}

func (c *closeCounter) RoundTrip(r *http.Request) (*http.Response, error) {
	return c.base.RoundTrip(r)
}

func (c *closeCounter) CloseIdleConnections() {
	c.closes.Add(1)
}

func TestInvoke_ReleasesConnectionWhenPredictFails(t *testing.T) {
	fb := newFakeBackend(t)
	fb.predict = func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}
	rt := &closeCounter{base: fb.Client().Transport}
	inv := NewInvoker(imaging.NewResolver(fb.Client(), nil), &http.Client{Transport: rt}, 0, nil)

	req := &request.ToolRequest{Kind: request.KindDetect, Image: "data:image/png;base64,AA=="}
	_, err := inv.Invoke(context.Background(), fb.URL, req, "det")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, http.StatusBadGateway, invErr.StatusCode)
	assert.Equal(t, int32(1), fb.predictCalls.Load())
	assert.Equal(t, int32(1), rt.closes.Load())
}

func TestInvoke_ReleasesConnectionWhenResolveFails(t *testing.T) {
	fb := newFakeBackend(t)
	rt := &closeCounter{base: fb.Client().Transport}
	inv := NewInvoker(imaging.NewResolver(fb.Client(), nil), &http.Client{Transport: rt}, 0, nil)

	req := &request.ToolRequest{Kind: request.KindDetect, Image: filepath.Join(t.TempDir(), "missing.png")}
	_, err := inv.Invoke(context.Background(), fb.URL, req, "det")

	var readErr *imaging.FileReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, int32(1), rt.closes.Load())
}

func TestInvoker_CallClientOwnsItsPool(t *testing.T) {
	base := &http.Client{Transport: &http.Transport{}, Timeout: time.Minute}
	inv := NewInvoker(nil, base, 0, nil)

	a, b := inv.callClient(), inv.callClient()
	assert.NotSame(t, base.Transport, a.Transport)
	assert.NotSame(t, a.Transport, b.Transport)
	assert.Equal(t, time.Minute, a.Timeout)

	def := NewInvoker(nil, nil, 0, nil).callClient()
	assert.NotSame(t, http.DefaultTransport, def.Transport)
	assert.IsType(t, &http.Transport{}, def.Transport)
}

func TestConnect_QueueEnabled(t *testing.T) {
	fb := newFakeBackend(t)
	fb.queue = true

	req := &request.ToolRequest{Kind: request.KindDetect, Image: "data:image/png;base64,AA=="}
	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "det")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "connect", invErr.Op)
	assert.ErrorIs(t, err, ErrQueueEnabled)
	assert.Contains(t, err.Error(), "queue")
	assert.Zero(t, fb.predictCalls.Load())
}

func TestInvoke_ConnectFailure(t *testing.T) {
	fb := newFakeBackend(t)
	fb.configStatus = http.StatusNotFound

	req := &request.ToolRequest{Kind: request.KindDetect, Image: "data:image/png;base64,AA=="}
	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "det")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "connect", invErr.Op)
	assert.Zero(t, fb.predictCalls.Load())
}

func TestInvoke_UnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	req := &request.ToolRequest{Kind: request.KindDetect, Image: "data:image/png;base64,AA=="}
	_, err := NewInvoker(imaging.NewResolver(nil, nil), nil, 0, nil).Invoke(context.Background(), endpoint, req, "det")

	var invErr *InvocationError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "connect", invErr.Op)
	assert.Error(t, invErr.Err)
}

func TestInvoke_ResolveFailureSkipsPredict(t *testing.T) {
	fb := newFakeBackend(t)

	req := &request.ToolRequest{Kind: request.KindDetect, Image: filepath.Join(t.TempDir(), "missing.jpg")}
	_, err := newTestInvoker(fb).Invoke(context.Background(), fb.URL, req, "det")

	var readErr *imaging.FileReadError
	require.ErrorAs(t, err, &readErr)
	assert.Zero(t, fb.predictCalls.Load())
}

func TestEnvelope_Groups(t *testing.T) {
	tests := []struct {
		name string
		data string
		want [][]FileRef
	}{
		{"absent", ``, nil},
		{"null", `null`, [][]FileRef{}},
		{"not an array", `{"x":1}`, nil},
		{
			"mixed",
			`[[{"is_file":true,"name":"a.png"}],"text",[{"is_file":false,"name":"c.png"},42,null]]`,
			[][]FileRef{
				{{IsFile: true, Name: "a.png"}},
				nil,
				{{IsFile: false, Name: "c.png"}, {}, {}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := &Envelope{Data: json.RawMessage(tt.data)}
			got := env.Groups()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPayloadArgs(t *testing.T) {
	p := Payload{
		Input:         ImageInput{Image: "img", Mask: "mask"},
		TextPrompt:    "tp",
		TaskType:      "seg",
		InpaintPrompt: "ip",
		BoxThreshold:  0.1,
		TextThreshold: 0.2,
		IOUThreshold:  0.3,
		InpaintMode:   "first",
		ScribbleMode:  "split",
		AuthKey:       "k",
	}

	assert.Equal(t, []any{
		ImageInput{Image: "img", Mask: "mask"}, "tp", "seg", "ip", 0.1, 0.2, 0.3, "first", "split", "k",
	}, p.Args())
}

func TestInvocationError_Message(t *testing.T) {
	err := &InvocationError{Op: "predict", StatusCode: 502}
	assert.Equal(t, "backend predict failed (status 502)", err.Error())
}
