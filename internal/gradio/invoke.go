package gradio

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ironsheep/vision-tools-mcp/internal/imaging"
	"github.com/ironsheep/vision-tools-mcp/internal/request"
)

// Invoker runs one prediction per tool call. It holds no per-call state and
// is safe for concurrent use.
type Invoker struct {
	resolver *imaging.Resolver
	client   *http.Client
	fnIndex  int
	logger   *zap.Logger
}

// NewInvoker creates an Invoker calling entry point fnIndex.
func NewInvoker(resolver *imaging.Resolver, client *http.Client, fnIndex int, logger *zap.Logger) *Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invoker{resolver: resolver, client: client, fnIndex: fnIndex, logger: logger}
}

// Invoke connects to endpoint, resolves the request image, sends the
// positional payload with taskType as discriminator and returns the raw
// envelope. The connection is released on every path.
func (inv *Invoker) Invoke(ctx context.Context, endpoint string, req *request.ToolRequest, taskType string) (*Envelope, error) {
	hc := inv.callClient()
	client, err := Connect(ctx, endpoint, hc, inv.logger)
	if err != nil {
		hc.CloseIdleConnections()
		return nil, err
	}
	defer client.Close()

	image := req.Image
	if !imaging.IsDataURI(image) {
		if image, err = inv.resolver.Resolve(ctx, image); err != nil {
			return nil, err
		}
	}

	mask, err := imaging.PlaceholderMask()
	if err != nil {
		return nil, err
	}

	payload := NewPayload(image, mask, req, taskType)
	inv.logger.Info("invoking backend",
		zap.String("endpoint", endpoint),
		zap.String("task_type", taskType),
		zap.String("text_prompt", req.TextPrompt))

	return client.Predict(ctx, inv.fnIndex, payload.Args())
}

// callClient returns a copy of the base client with a connection pool of its
// own, so releasing it does not touch other calls' idle connections.
// Transports other than *http.Transport are shared as-is.
func (inv *Invoker) callClient() *http.Client {
	base := inv.client
	if base == nil {
		base = http.DefaultClient
	}
	c := *base
	switch t := base.Transport.(type) {
	case nil:
		c.Transport = http.DefaultTransport.(*http.Transport).Clone()
	case *http.Transport:
		c.Transport = t.Clone()
	}
	return &c
}
