// Package teo реализует клиент API EdgeOne с подписью TC3-HMAC-SHA256
package teo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"teo-dashboard/internal/metrics"
	"teo-dashboard/internal/retry"
)

const (
	// DefaultEndpoint хост API по умолчанию
	DefaultEndpoint = "teo.tencentcloudapi.com"
	// DefaultRegion регион по умолчанию
	DefaultRegion = "ap-guangzhou"
	// APIVersion версия API teo
	APIVersion = "2022-09-01"

	service      = "teo"
	maxBodyBytes = 16 << 20
)

// ErrMalformedResponse ответ не содержит объекта Response
var ErrMalformedResponse = errors.New("malformed provider response")

// StatusError ответ с неуспешным HTTP статусом без тела Response
type StatusError struct {
	Action string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Action, e.Status, e.Body)
}

// Options параметры клиента
type Options struct {
	Endpoint string
	// BaseURL заменяет https://<Endpoint>/
	BaseURL    string
	Region     string
	Timeout    time.Duration
	Retries    int
	QPS        float64
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client вызывает действия API провайдера
type Client struct {
	creds   Credentials
	host    string
	baseURL string
	region  string
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	policy  retry.Policy
	now     func() time.Time
}

// NewClient создает клиент. Без ключей клиент создается, но каждый вызов
// возвращает ErrMissingCredentials.
func NewClient(creds Credentials, opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://" + opts.Endpoint + "/"
	}
	if opts.Region == "" {
		opts.Region = DefaultRegion
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", opts.BaseURL, err)
	}

	limit := rate.Inf
	burst := 1
	if opts.QPS > 0 {
		limit = rate.Limit(opts.QPS)
		burst = int(opts.QPS)
		if burst < 1 {
			burst = 1
		}
	}

	policy := retry.DefaultPolicy()
	policy.Attempts = opts.Retries + 1

	return &Client{
		creds:   creds,
		host:    u.Host,
		baseURL: opts.BaseURL,
		region:  opts.Region,
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(limit, burst),
		timeout: opts.Timeout,
		policy:  policy,
		now:     opts.Now,
	}, nil
}

// HasCredentials true, если ключи заданы
func (c *Client) HasCredentials() bool {
	return c.creds.Valid()
}

// Region регион по умолчанию
func (c *Client) Region() string {
	return c.region
}

// Call выполняет действие и возвращает содержимое поля Response без изменений.
// Пустой region означает регион клиента.
func (c *Client) Call(ctx context.Context, action, region string, params interface{}) (json.RawMessage, error) {
	if !c.creds.Valid() {
		return nil, ErrMissingCredentials
	}
	if region == "" {
		region = c.region
	}
	if params == nil {
		params = struct{}{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s params: %w", action, err)
	}

	timer := prometheus.NewTimer(metrics.UpstreamLatency.WithLabelValues(action))
	defer timer.ObserveDuration()

	var out json.RawMessage
	err = retry.Do(ctx, c.policy, retryable, func(attempt int) error {
		if attempt > 1 {
			log.Printf("Retrying %s (attempt %d)", action, attempt)
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		var callErr error
		out, callErr = c.do(ctx, action, region, payload)
		return callErr
	})

	metrics.UpstreamCalls.WithLabelValues(action, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, action, region string, payload []byte) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	ts := c.now()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-TC-Action", action)
	req.Header.Set("X-TC-Version", APIVersion)
	req.Header.Set("X-TC-Timestamp", strconv.FormatInt(ts.Unix(), 10))
	req.Header.Set("X-TC-Region", region)
	req.Header.Set("Authorization", authorization(c.creds, service, c.host, action, payload, ts))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", action, err)
	}

	var envelope struct {
		Response json.RawMessage `json:"Response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Response) == 0 || string(envelope.Response) == "null" {
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Action: action, Status: resp.StatusCode, Body: truncate(string(body), 256)}
		}
		return nil, fmt.Errorf("%s: %w", action, ErrMalformedResponse)
	}

	var head struct {
		Error *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
		RequestID string `json:"RequestId"`
	}
	if err := json.Unmarshal(envelope.Response, &head); err != nil {
		return nil, fmt.Errorf("%s: %w", action, ErrMalformedResponse)
	}
	if head.Error != nil {
		return nil, &APIError{Code: head.Error.Code, Message: head.Error.Message, RequestID: head.RequestID}
	}
	return envelope.Response, nil
}

// retryable повторяет транспортные сбои и 5xx, но не ошибки провайдера
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status >= http.StatusInternalServerError
	}
	return retry.IsTransient(err)
}

func outcome(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "transport_error"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
