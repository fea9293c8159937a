// Package upstream talks to the remote scheduler API that owns the items.
package upstream

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
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"bizdash/internal/models"
)

// StatusError is a non-2xx answer from the remote API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d body=%s", e.Code, e.Body)
}

type Options struct {
	Token         string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Location      *time.Location // zone for date-only wire values
	HTTPClient    *http.Client
}

type Client struct {
	baseURL  string
	token    string
	timeout  time.Duration
	retryCfg retry.Config
	loc      *time.Location
	http     *http.Client
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   opts.Token,
		timeout: opts.Timeout,
		retryCfg: retry.Config{
			MaxAttempts:   opts.RetryAttempts,
			InitialDelay:  opts.RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		loc:  opts.Location,
		http: opts.HTTPClient,
	}
}

// GetSchedulerItems fetches the items due in the inclusive date range.
// Transport failures and 5xx answers are retried; 4xx answers are not.
// Elements that cannot be decoded are logged and skipped.
func (c *Client) GetSchedulerItems(ctx context.Context, params models.FetchParams) ([]models.SchedulerItem, error) {
	endpoint := c.baseURL + "/scheduler/items?" + Query(params).Encode()

	var permanent error
	r := retry.New[[]json.RawMessage](c.retryCfg)
	t := timeout.New[[]json.RawMessage](timeout.Config{DefaultTimeout: c.timeout})

	raw, err := r.Do(ctx, func(ctx context.Context) ([]json.RawMessage, error) {
		out, err := t.Execute(ctx, c.timeout, func(ctx context.Context) ([]json.RawMessage, error) {
			return c.fetchOnce(ctx, endpoint)
		})
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			permanent = err
			return nil, nil
		}
		return out, err
	})
	if permanent != nil {
		log.Printf("[upstream][items][err] %v", permanent)
		return nil, permanent
	}
	if err != nil {
		log.Printf("[upstream][items][err] after retries: %v", err)
		return nil, fmt.Errorf("get scheduler items: %w", err)
	}

	items := decodeAll(raw, c.loc)
	log.Printf("[upstream][items][ok] start=%s end=%s received=%d decoded=%d",
		params.StartISO(), params.EndISO(), len(raw), len(items))
	return items, nil
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return splitItems(body)
}

// splitItems accepts either a bare array or an object with an "items" or "data" array.
func splitItems(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("decode items array: %w", err)
		}
		return arr, nil
	}
	var wrapped struct {
		Items []json.RawMessage `json:"items"`
		Data  []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode items envelope: %w", err)
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return wrapped.Data, nil
}

// Query builds the query string for the fetch parameters.
func Query(p models.FetchParams) url.Values {
	q := url.Values{}
	q.Set("start_date", p.StartISO())
	q.Set("end_date", p.EndISO())
	if p.AssignedTo != nil && *p.AssignedTo != "" {
		q.Set("assigned_to", *p.AssignedTo)
	}
	if p.Status != nil {
		q.Set("status", string(*p.Status))
	}
	if p.Priority != nil {
		q.Set("priority", string(*p.Priority))
	}
	if p.Type != nil {
		q.Set("type", string(*p.Type))
	}
	return q
}
