// Package generator requests module code from an OpenAI compatible chat
// completion service.
package generator

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/buger/jsonparser"
	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/priyxstudio/pub/modules"
)

const (
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultModel    = "gpt-4o-2024-08-06"
)

// ErrMissingContent is returned when the service answers without a completion.
var ErrMissingContent = errors.Sentinel("generator: response did not contain a completion")

// RequestError is returned when the service answers with an error status.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return "generator: request failed with status " + http.StatusText(e.StatusCode)
	}
	return "generator: request failed with status " + http.StatusText(e.StatusCode) + ": " + e.Message
}

// retryable reports whether the request is worth sending again.
func (e *RequestError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client talks to a chat completion endpoint. It is safe for concurrent use.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	headers    map[string]string
	httpClient *http.Client
	maxRetries uint64
	limiter    *rate.Limiter
}

var _ modules.Generator = (*Client)(nil)

type ClientOption func(c *Client)

// New returns a client for the chat completion endpoint at endpoint.
func New(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		model:      DefaultModel,
		headers:    make(map[string]string),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithCredentials sets the API key sent as a bearer token.
func WithCredentials(apiKey string) ClientOption {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithModel sets the model used for completions.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithCustomHeaders adds headers to every request.
func WithCustomHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n uint64) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRateLimit limits the client to rps requests per second. Zero disables
// the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func (c *Client) Generate(ctx context.Context, name, description string, others []modules.ModuleInterface) (string, error) {
	return c.complete(ctx, name, generationMessages(description, others), generationSchema)
}

func (c *Client) Fix(ctx context.Context, name, description, prior string, errs []string, others []modules.ModuleInterface) (string, error) {
	return c.complete(ctx, name, fixMessages(description, prior, errs, others), generationSchema)
}

func (c *Client) Adjust(ctx context.Context, name, description, instructions, prior string, others []modules.ModuleInterface) (string, error) {
	return c.complete(ctx, name, adjustmentMessages(description, instructions, prior, others), adjustmentSchema)
}

type completionRequest struct {
	Model          string    `json:"model"`
	Messages       []Message `json:"messages"`
	ResponseFormat any       `json:"response_format"`
}

// complete sends the messages and returns the content of the first choice.
// Transport failures and server side errors are retried with an exponential
// backoff.
func (c *Client) complete(ctx context.Context, name string, messages []Message, format any) (string, error) {
	body, err := json.Marshal(completionRequest{Model: c.model, Messages: messages, ResponseFormat: format})
	if err != nil {
		return "", errors.Wrap(err, "generator: failed to encode request")
	}

	var content string
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(errors.WithStack(err))
			}
		}
		res, err := c.requestOnce(ctx, body)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, ErrMissingContent) {
				return backoff.Permanent(err)
			}
			var rerr *RequestError
			if errors.As(err, &rerr) && !rerr.retryable() {
				return backoff.Permanent(err)
			}
			log.WithField("module", name).WithField("attempt", attempt).WithError(err).Debug("generation request failed")
			return err
		}
		content = res
		return nil
	}, c.backoff(ctx))
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) requestOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "generator: failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "generator: failed to send request")
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "generator: failed to read response")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := jsonparser.GetString(b, "error", "message")
		return "", &RequestError{StatusCode: res.StatusCode, Message: msg}
	}

	content, err := jsonparser.GetString(b, "choices", "[0]", "message", "content")
	if err != nil {
		return "", errors.WithDetails(ErrMissingContent, "response", string(b))
	}
	return content, nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}
