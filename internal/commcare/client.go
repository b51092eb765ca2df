package commcare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"photoaudit/internal/providers"
	"photoaudit/internal/structures"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	formsPath       = "/a/%s/api/v0.5/form/"
	maxRetryBackoff = 30 * time.Second
	maxBodyInError  = 512
)

// StatusError is a non-2xx response that was not retried or ran out of
// retries.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commcare: %s returned %d: %s", e.URL, e.Code, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.Code
}

func isRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// retryAfter honours a Retry-After header given in seconds, capped at max.
func retryAfter(resp *http.Response, fallback, max time.Duration) time.Duration {
	wait := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && wait > max {
		wait = max
	}
	return wait
}

// jitter spreads d by +-20%.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	delta := float64(d) * 0.2
	return time.Duration(float64(d) - delta + rand.Float64()*2*delta)
}

type FormQuery struct {
	AppID         string
	Limit         int
	MaxForms      int
	ReceivedStart string
	ReceivedEnd   string
}

type ClientInterface interface {
	ListForms(ctx context.Context, domain string, q FormQuery) ([]Form, error)
	Download(ctx context.Context, location string) ([]byte, error)
}

type Client struct {
	http       *http.Client
	baseURL    string
	creds      Credentials
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     providers.Logger
}

func NewClient(conf *structures.Config, creds Credentials, logger providers.Logger) *Client {
	cc := conf.CommCare
	limit := rate.Inf
	if cc.RequestsPerSecond > 0 {
		limit = rate.Limit(cc.RequestsPerSecond)
	}
	timeout := cc.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cc.BaseURL, "/"),
		creds:      creds,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: cc.MaxRetries,
		backoff:    time.Second,
		logger:     logger,
	}
}

// get performs an authenticated GET, pacing requests and retrying
// 408, 429, 5xx and timeouts up to maxRetries times.
func (c *Client) get(ctx context.Context, location string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(c.creds.Username, c.creds.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil || !isRetryableError(err) {
				return nil, err
			}
			lastErr = err
			c.logger.Warnf(providers.TypeFetch, "GET %s failed (attempt %d): %s", location, attempt+1, err)
			if err := c.sleep(ctx, jitter(c.backoff<<attempt)); err != nil {
				return nil, err
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		if len(body) > maxBodyInError {
			body = body[:maxBodyInError]
		}
		lastErr = &StatusError{Code: resp.StatusCode, URL: location, Body: string(body)}
		if !isRetryableStatus(resp.StatusCode) {
			return nil, lastErr
		}

		wait := retryAfter(resp, jitter(c.backoff<<attempt), maxRetryBackoff)
		c.logger.Warnf(providers.TypeFetch, "GET %s returned %d, retrying in %s", location, resp.StatusCode, wait)
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) formsURL(domain string, q FormQuery) string {
	params := url.Values{}
	params.Set("app_id", q.AppID)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.ReceivedStart != "" {
		params.Set("received_on_start", q.ReceivedStart)
	}
	if q.ReceivedEnd != "" {
		params.Set("received_on_end", q.ReceivedEnd)
	}
	return c.baseURL + fmt.Sprintf(formsPath, url.PathEscape(domain)) + "?" + params.Encode()
}

// ListForms pages through the form list until meta.next is empty or
// MaxForms forms were collected.
func (c *Client) ListForms(ctx context.Context, domain string, q FormQuery) ([]Form, error) {
	next := c.formsURL(domain, q)
	forms := make([]Form, 0)

	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return forms, err
		}

		var page formPage
		if err := json.Unmarshal(body, &page); err != nil {
			return forms, fmt.Errorf("commcare: decode form list: %w", err)
		}
		forms = append(forms, page.Objects...)
		c.logger.Debugf(providers.TypeFetch, "%s: page with %d forms, %d so far", domain, len(page.Objects), len(forms))

		if q.MaxForms > 0 && len(forms) >= q.MaxForms {
			return forms[:q.MaxForms], nil
		}
		if page.Meta.Next == nil || *page.Meta.Next == "" || len(page.Objects) == 0 {
			break
		}
		next, err = resolve(next, *page.Meta.Next)
		if err != nil {
			return forms, err
		}
	}
	return forms, nil
}

// resolve interprets a next link relative to the page it came from.
func resolve(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("commcare: bad next link %q: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) Download(ctx context.Context, location string) ([]byte, error) {
	return c.get(ctx, location)
}
