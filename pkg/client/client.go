package client

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"okx-dex/pkg/metrics"
	"okx-dex/pkg/types"
)

const (
	DefaultBaseURL = "https://web3.okx.com"
	DefaultTimeout = 30 * time.Second

	headerKey        = "OK-ACCESS-KEY"
	headerSign       = "OK-ACCESS-SIGN"
	headerTimestamp  = "OK-ACCESS-TIMESTAMP"
	headerPassphrase = "OK-ACCESS-PASSPHRASE"
	headerProject    = "OK-ACCESS-PROJECT"
)

// Config holds the API credentials and transport settings
type Config struct {
	APIKey            string
	SecretKey         string
	Passphrase        string
	ProjectID         string
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

// APIError is a non-success response from the aggregator
type APIError struct {
	Status int
	Code   string
	Msg    string
	Path   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %s on %s (status %d): %s", e.Code, e.Path, e.Status, e.Msg)
	}
	return fmt.Sprintf("API error on %s (status %d): %s", e.Path, e.Status, e.Msg)
}

type envelope[T any] struct {
	Code types.FlexString `json:"code"`
	Msg  string           `json:"msg"`
	Data []T              `json:"data"`
}

// Client performs signed requests against the aggregator API
type Client struct {
	cfg     Config
	http    *retryablehttp.Client
	limiter *rate.Limiter
	log     zerolog.Logger
	now     func() time.Time
}

// New creates a new signed API client
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:     cfg,
		http:    newRetryClient(cfg),
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
		now:     time.Now,
	}
}

// newRetryClient creates an HTTP client that retries connection errors and 5xx/429 responses
func newRetryClient(cfg Config) *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = cfg.MaxRetries
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.HTTPClient.Timeout = cfg.Timeout
	c.Logger = nil
	return c
}

// Get performs a signed GET and returns the envelope data
func Get[T any](ctx context.Context, c *Client, path string, params map[string]string) ([]T, error) {
	query := encodeQuery(params)
	body, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return decode[T](path, body)
}

// Post performs a signed POST with a JSON body and returns the envelope data
func Post[T any](ctx context.Context, c *Client, path string, payload any) ([]T, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, "", raw)
	if err != nil {
		return nil, err
	}
	return decode[T](path, body)
}

func decode[T any](path string, body []byte) ([]T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		metrics.APIRequestsTotal.WithLabelValues(path, "decode_error").Inc()
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if env.Code.String() != "0" {
		metrics.APIRequestsTotal.WithLabelValues(path, "api_error").Inc()
		return nil, &APIError{Status: http.StatusOK, Code: env.Code.String(), Msg: env.Msg, Path: path}
	}
	if len(env.Data) == 0 {
		metrics.APIRequestsTotal.WithLabelValues(path, "empty").Inc()
		return nil, &APIError{Status: http.StatusOK, Code: env.Code.String(), Msg: "empty response data", Path: path}
	}
	metrics.APIRequestsTotal.WithLabelValues(path, "success").Inc()
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path, query string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	requestPath := path
	if query != "" {
		requestPath += "?" + query
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.cfg.BaseURL+requestPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	timestamp := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
	c.setHeaders(req.Header, timestamp, Sign(c.cfg.SecretKey, timestamp, method, requestPath, string(body)))

	c.log.Debug().Str("method", method).Str("path", requestPath).Msg("api request")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(path, "transport_error").Inc()
		return nil, fmt.Errorf("failed to call %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.APIRequestsTotal.WithLabelValues(path, "http_error").Inc()
		apiErr := &APIError{Status: resp.StatusCode, Path: path, Msg: strings.TrimSpace(string(respBody))}
		// Try to extract the envelope message
		var env envelope[json.RawMessage]
		if json.Unmarshal(respBody, &env) == nil && env.Msg != "" {
			apiErr.Code = env.Code.String()
			apiErr.Msg = env.Msg
		}
		return nil, apiErr
	}

	return respBody, nil
}

func (c *Client) setHeaders(h http.Header, timestamp, signature string) {
	h.Set("Content-Type", "application/json")
	h.Set(headerKey, c.cfg.APIKey)
	h.Set(headerSign, signature)
	h.Set(headerTimestamp, timestamp)
	h.Set(headerPassphrase, c.cfg.Passphrase)
	h.Set(headerProject, c.cfg.ProjectID)
}

// Sign computes the OK-ACCESS-SIGN header value.
// requestPath includes the query string for GET requests; body is empty for them.
func Sign(secret, timestamp, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}
