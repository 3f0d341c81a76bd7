package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/domain"
)

const (
	headerAPIKey       = "x-api-key"
	headerAcceptMime   = "x-accept-mimetype"
	acceptBase64       = "application/json+base64"
	base64ResponseMime = "image/png"
)

// Config holds the settings a Client is constructed with
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is the Firefly API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient creates a new Firefly API client
func NewClient(cfg Config, tokens TokenSource, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		tokens:  tokens,
		log:     log.Named("firefly"),
	}
}

// Dispatch performs one POST to the API and classifies the response body
func (c *Client) Dispatch(ctx context.Context, req domain.Request) (*domain.Response, error) {
	header, err := c.buildHeader(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	switch req.Mode {
	case domain.ModeFile:
		if req.File == nil {
			return nil, fmt.Errorf("%w: file mode requires a file", domain.ErrRequest)
		}
		header.Set("Content-Type", req.File.ContentType)
		body = bytes.NewReader(req.File.Data)
	case domain.ModeReference, domain.ModeBase64:
		payload, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to marshal payload: %w", domain.ErrRequest, err)
		}
		if req.Mode == domain.ModeBase64 {
			header.Set("Accept", acceptBase64)
			header.Set(headerAcceptMime, base64ResponseMime)
		}
		body = bytes.NewReader(payload)
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", domain.ErrRequest, req.Mode)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+req.Endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrRequest, err)
	}
	httpReq.Header = header

	started := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %w", domain.ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", domain.ErrRequest, err)
	}

	result := ClassifyResponse(resp.StatusCode, data)
	c.log.Debug("api call",
		zap.String("endpoint", req.Endpoint),
		zap.String("mode", string(req.Mode)),
		zap.Int("status", resp.StatusCode),
		zap.Stringer("kind", result.Kind),
		zap.Int("items", len(result.Items)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// buildHeader fetches a fresh token and sets the standard headers
func (c *Client) buildHeader(ctx context.Context) (http.Header, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("%w: no token source configured", domain.ErrToken)
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrToken, err)
	}

	header := http.Header{}
	header.Set("Authorization", tok.Type()+" "+tok.AccessToken)
	header.Set(headerAPIKey, c.apiKey)
	header.Set("Content-Type", "application/json")
	return header, nil
}
