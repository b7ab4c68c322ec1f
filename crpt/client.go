package crpt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hulio7/crptapi/ratelimit"
)

// DefaultEndpoint is the CRPT create-document URL.
const DefaultEndpoint = "https://ismp.crpt.ru/api/v3/lk/documents/create"

const defaultTimeout = 30 * time.Second

// Client submits documents to the CRPT API. Every submission passes through
// the limiter before anything touches the network; there is no bypass path.
type Client struct {
	limiter    ratelimit.Limiter
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	logger     *zap.Logger
	validate   bool
}

type ClientOption func(*Client)

func WithEndpoint(url string) ClientOption {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient replaces the default transport. The caller's client wins over
// WithTimeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithSchemaValidation toggles structural validation of the wire payload
// before it is sent. On by default.
func WithSchemaValidation(enabled bool) ClientOption {
	return func(c *Client) { c.validate = enabled }
}

func NewClient(limiter ratelimit.Limiter, opts ...ClientOption) (*Client, error) {
	if limiter == nil {
		return nil, errors.New("crpt: limiter is required")
	}

	c := &Client{
		limiter:  limiter,
		endpoint: DefaultEndpoint,
		timeout:  defaultTimeout,
		logger:   zap.NewNop(),
		validate: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// CreateDocument submits one document with its detached signature and returns
// the API outcome for any HTTP status. A limiter slot is consumed before
// serialization, so a document that turns out to be unencodable still counts
// against the quota.
func (c *Client) CreateDocument(ctx context.Context, doc *Document, signature string) (*APIResponse, error) {
	if doc == nil {
		return nil, errors.New("crpt: document is required")
	}

	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if c.validate {
		if err := validateWire(payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
	}

	return c.post(ctx, payload, signature)
}

// CreateDocumentRaw submits a pre-serialized document payload. Same limiter
// and validation semantics as CreateDocument.
func (c *Client) CreateDocumentRaw(ctx context.Context, payload []byte, signature string) (*APIResponse, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	if c.validate {
		if err := validateWire(payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
	}

	return c.post(ctx, payload, signature)
}

func (c *Client) post(ctx context.Context, payload []byte, signature string) (*APIResponse, error) {
	submitID := uuid.New().String()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Signature", signature)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// a cancelled context surfaces as cancellation, not as a
		// transport failure
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("crpt: submission aborted: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", ErrNetwork, err)
	}

	c.logger.Info("document submitted",
		zap.String("submit_id", submitID),
		zap.Int("status", resp.StatusCode))

	return &APIResponse{StatusCode: resp.StatusCode, Body: string(body)}, nil
}
