// File: internal/bigid/client.go
package bigid

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bigid-apps/quickstart/internal/execution"
	"github.com/bigid-apps/quickstart/internal/observability"
)

// Target identifies the API a call goes to and the token it carries.
type Target struct {
	BaseURL string
	Token   string
}

// TargetFrom points at the BigID instance that sent ec.
func TargetFrom(ec *execution.Context) Target {
	return Target{BaseURL: ec.BigIDBaseURL, Token: ec.BigIDToken}
}

// Response is a 2xx answer with its body fully read.
type Response struct {
	StatusCode int
	Body       []byte
	// Service names the API that sent the response.
	Service string
}

// Options configures a Client.
type Options struct {
	// Service names the remote API in error messages ("BigID", "backup").
	Service string
	// BearerAuth sends "Authorization: Bearer <token>" instead of the bare
	// token BigID expects.
	BearerAuth bool
	// Timeout bounds every call, including reading the body.
	Timeout time.Duration
	// RateLimit caps outbound calls per second; zero disables limiting.
	RateLimit float64
	RateBurst int

	HTTPClient *http.Client
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Client performs single-shot calls against a JSON REST API. Any non-2xx
// status, transport failure or deadline is returned as an error; nothing is
// retried. A Client is safe for concurrent use.
type Client struct {
	service    string
	label      string
	bearer     bool
	timeout    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *zap.Logger
}

const defaultTimeout = 30 * time.Second

func NewClient(opts Options) *Client {
	c := &Client{
		service:    opts.Service,
		label:      strings.ToLower(opts.Service),
		bearer:     opts.BearerAuth,
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if c.service == "" {
		c.service = "BigID"
		c.label = "bigid"
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named(c.label)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Get issues GET <base>/<pathAndQuery>.
func (c *Client) Get(ctx context.Context, target Target, pathAndQuery string) (*Response, error) {
	return c.do(ctx, http.MethodGet, target, pathAndQuery, nil)
}

// PostJSON issues POST with body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, target Target, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, target, path, body)
}

// Put issues PUT. urlOrPath may be absolute, as callback URLs are.
func (c *Client) Put(ctx context.Context, target Target, urlOrPath string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, target, urlOrPath, body)
}

// Patch issues PATCH. urlOrPath may be absolute.
func (c *Client) Patch(ctx context.Context, target Target, urlOrPath string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPatch, target, urlOrPath, body)
}

func (c *Client) do(ctx context.Context, method string, target Target, path string, body interface{}) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for %s API rate limiter: %w", c.service, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s request body: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := resolveURL(target.BaseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if target.Token != "" {
		if c.bearer {
			req.Header.Set("Authorization", "Bearer "+target.Token)
		} else {
			req.Header.Set("Authorization", target.Token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, "error", start)
		return nil, c.transportError(method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(method, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, c.transportError(method, endpoint, err)
	}

	c.logger.Debug("Remote call finished.",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}
	return &Response{StatusCode: resp.StatusCode, Body: data, Service: c.service}, nil
}

func (c *Client) transportError(method, endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newKindError(ErrTimeout, err, "Request to %s API timed out after %s: %s %s.", c.service, c.timeout, method, endpoint)
	}
	return fmt.Errorf("Request to %s API failed: %w", c.service, err)
}

func (c *Client) observe(method, code string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RemoteRequests.WithLabelValues(c.label, method, code).Inc()
	c.metrics.RemoteDuration.WithLabelValues(c.label, method).Observe(time.Since(start).Seconds())
}

// resolveURL joins base and path with exactly one slash. Absolute URLs are
// used as they are.
func resolveURL(base, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// QueryEscape escapes s for use as a query value, spaces as %20.
func QueryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals resp into v and validates it against the struct tags of
// its schema. v may point to a struct or to a slice of structs. Any mismatch
// is reported as ErrMalformedResponse.
func Decode(resp *Response, v interface{}) error {
	service := resp.Service
	if service == "" {
		service = "BigID"
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return Malformedf(err, "Malformed response from %s API: %v.", service, err)
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Struct:
		if err := validate.Struct(v); err != nil {
			return Malformedf(err, "Malformed response from %s API: %v.", service, err)
		}
	case reflect.Slice:
		for i := 0; i < rv.Len(); i++ {
			elem := reflect.Indirect(rv.Index(i))
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := validate.Struct(elem.Interface()); err != nil {
				return Malformedf(err, "Malformed response from %s API: item %d: %v.", service, i, err)
			}
		}
	}
	return nil
}
