// Package sessionclient is an HTTP client for the event-planner API that keeps
// a cookie session alive. A 401 on a regular endpoint triggers one shared
// refresh; every request that failed meanwhile waits for it and is replayed once.
package sessionclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// DefaultRefreshTimeout bounds a single refresh round trip.
const DefaultRefreshTimeout = 10 * time.Second

// RefreshError is returned to every request queued behind a failed refresh.
type RefreshError struct {
	Status int
	Err    error
}

func (e *RefreshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session refresh failed: %v", e.Err)
	}
	return fmt.Sprintf("session refresh failed: status %d", e.Status)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying client. Its Jar is kept if set,
// otherwise a copy of hc with a fresh cookie jar is used and hc is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRefreshTimeout overrides DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

// OnSessionExpired registers fn to run once per failed refresh.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) { c.onExpired = fn }
}

type waiter struct {
	ready chan error
	gone  chan struct{}
}

// Client sends requests with the session cookies and renews them on 401.
type Client struct {
	baseURL        string
	http           *http.Client
	refreshTimeout time.Duration
	onExpired      func()

	mu         sync.Mutex
	refreshing bool
	queue      []*waiter
}

// New returns a Client for the API mounted at baseURL, e.g. "http://localhost:3001/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &http.Client{},
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList, and none is given.
		jar, _ := cookiejar.New(nil)
		hc := *c.http
		hc.Jar = jar
		c.http = &hc
	}
	return c
}

// Do sends req. A 401 from any endpoint except the credential ones waits for a
// session refresh and replays req exactly once; the replayed response is
// returned as-is.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	getBody, err := rewindable(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || isCredentialPath(req) {
		return resp, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	ctx := req.Context()
	if err := c.awaitRefresh(ctx); err != nil {
		return nil, err
	}

	replay := req.Clone(ctx)
	if getBody != nil {
		if replay.Body, err = getBody(); err != nil {
			return nil, fmt.Errorf("replay body: %w", err)
		}
	}
	return c.http.Do(replay)
}

// awaitRefresh queues the caller behind the current refresh, starting one if
// none is running.
func (c *Client) awaitRefresh(ctx context.Context) error {
	w, leader := c.join()
	if leader {
		go c.runRefresh()
	}
	select {
	case err := <-w.ready:
		return err
	case <-ctx.Done():
		close(w.gone)
		return ctx.Err()
	}
}

func (c *Client) join() (*waiter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := &waiter{ready: make(chan error), gone: make(chan struct{})}
	c.queue = append(c.queue, w)
	if c.refreshing {
		return w, false
	}
	c.refreshing = true
	return w, true
}

// settle hands err to every queued waiter in arrival order.
func (c *Client) settle(err error) {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.refreshing = false
	c.mu.Unlock()

	for _, w := range queue {
		select {
		case w.ready <- err:
		case <-w.gone:
		}
	}
}

func (c *Client) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()

	err := c.refresh(ctx)
	if err != nil {
		c.expire()
	}
	c.settle(err)
}

func (c *Client) refresh(ctx context.Context) error {
	resp, err := c.post(ctx, "/auth/refresh", nil)
	if err != nil {
		return &RefreshError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return &RefreshError{Status: resp.StatusCode}
	}
	return nil
}

// expire ends the server session and notifies the caller. Logout errors are ignored.
func (c *Client) expire() {
	ctx, cancel := context.WithTimeout(context.Background(), c.refreshTimeout)
	defer cancel()
	if resp, err := c.post(ctx, "/auth/logout", nil); err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	if c.onExpired != nil {
		c.onExpired()
	}
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// rewindable makes sure req's body can be produced again for a replay.
func rewindable(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}
	b, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	req.Body, _ = req.GetBody()
	return req.GetBody, nil
}

// credentialPaths answer 401 for bad credentials, not for an expired session,
// so a refresh cannot help them.
var credentialPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/verify-otp",
	"/auth/refresh",
	"/auth/logout",
}

func isCredentialPath(req *http.Request) bool {
	p := strings.TrimRight(req.URL.Path, "/")
	for _, suffix := range credentialPaths {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}

// IsSessionExpired reports whether err came from a failed session refresh.
func IsSessionExpired(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}
