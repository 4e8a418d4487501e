package gradio

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is kept in an error.
const maxErrorBody = 4096

// InvocationError reports a failed call against the backend. Message carries
// the backend's own text when it sent one.
type InvocationError struct {
	Op         string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *InvocationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "backend %s failed", e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	switch {
	case e.Message != "":
		b.WriteString(": " + e.Message)
	case e.Err != nil:
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ErrQueueEnabled is wrapped by the InvocationError Connect returns for an
// app launched with its request queue on.
var ErrQueueEnabled = errors.New("gradio queue mode not supported")

// AppInfo is the subset of the backend's /config document we look at.
type AppInfo struct {
	Version     string `json:"version"`
	EnableQueue bool   `json:"enable_queue"`
}

// Client is a connection to one Gradio backend. It is not reused across
// tool calls; Close must be called when the call is done.
type Client struct {
	endpoint    string
	http        *http.Client
	sessionHash string
	logger      *zap.Logger

	// Info is the app description fetched by Connect.
	Info AppInfo
}

// Connect fetches <endpoint>/config to confirm the backend is reachable.
func Connect(ctx context.Context, endpoint string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		endpoint:    strings.TrimRight(endpoint, "/"),
		http:        httpClient,
		sessionHash: newSessionHash(),
		logger:      logger,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/config", nil)
	if err != nil {
		return nil, c.fail("connect", 0, "", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail("connect", 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail("connect", resp.StatusCode, readErrorBody(resp.Body), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(&c.Info); err != nil {
		return nil, c.fail("connect", 0, "", fmt.Errorf("decode config: %w", err))
	}

	if c.Info.EnableQueue {
		return nil, c.fail("connect", 0, "backend has its request queue enabled; queued apps only accept predictions over the websocket queue, which is not supported", ErrQueueEnabled)
	}

	c.logger.Debug("connected to backend",
		zap.String("endpoint", c.endpoint),
		zap.String("gradio_version", c.Info.Version),
		zap.Bool("queue", c.Info.EnableQueue))
	return c, nil
}

type predictRequest struct {
	Data        []any  `json:"data"`
	FnIndex     int    `json:"fn_index"`
	SessionHash string `json:"session_hash"`
}

// Predict calls the entry point fnIndex with positional args.
func (c *Client) Predict(ctx context.Context, fnIndex int, args []any) (*Envelope, error) {
	body, err := json.Marshal(predictRequest{Data: args, FnIndex: fnIndex, SessionHash: c.sessionHash})
	if err != nil {
		return nil, c.fail("predict", 0, "", fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/run/predict", bytes.NewReader(body))
	if err != nil {
		return nil, c.fail("predict", 0, "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling predict", zap.String("endpoint", c.endpoint), zap.Int("fn_index", fnIndex), zap.Int("payload_bytes", len(body)))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail("predict", 0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.fail("predict", resp.StatusCode, readErrorBody(resp.Body), nil)
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, c.fail("predict", 0, "", fmt.Errorf("decode response: %w", err))
	}
	if env.Error != "" {
		return nil, c.fail("predict", 0, env.Error, nil)
	}
	return &env, nil
}

// Close releases the client's idle connections. It is safe to call more than once.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	c.logger.Debug("backend connection released", zap.String("endpoint", c.endpoint))
	return nil
}

func (c *Client) fail(op string, status int, message string, err error) *InvocationError {
	return &InvocationError{Op: op, Endpoint: c.endpoint, StatusCode: status, Message: message, Err: err}
}

// readErrorBody returns the backend's error text, preferring the "error"
// field of a JSON body.
func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(b))
}

func newSessionHash() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
