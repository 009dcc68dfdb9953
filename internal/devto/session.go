package devto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// FailureKind tags a failed request so the retry policy can switch on it
// without inspecting transport internals.
type FailureKind int

const (
	// FailureTimeout marks a read/roundtrip timeout. Transient.
	FailureTimeout FailureKind = iota
	// FailureConnection marks a connection-level fault. Transient.
	FailureConnection
	// FailureRequest marks everything else: HTTP error statuses and
	// malformed response bodies. Never retried.
	FailureRequest
)

// RequestError wraps a transport failure with its retry classification.
type RequestError struct {
	Kind FailureKind
	Err  error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error is worth retrying.
func IsTransient(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.Kind == FailureTimeout || reqErr.Kind == FailureConnection
}

// Session performs JSON GET requests against the remote API. One session is
// acquired per fetch batch and must be closed when the batch ends.
type Session interface {
	GetJSON(ctx context.Context, url string, v any) error
	Close()
}

// SessionFactory produces a fresh session for a fetch batch.
type SessionFactory func() (Session, error)

type httpSession struct {
	client    *http.Client
	userAgent string
	apiKey    string
}

// NewHTTPSession builds a Session backed by net/http.
func NewHTTPSession(timeout time.Duration, apiKey string) Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpSession{
		client:    &http.Client{Timeout: timeout},
		userAgent: "devtomirror/1.0",
		apiKey:    apiKey,
	}
}

func (s *httpSession) GetJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &RequestError{Kind: FailureRequest, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &RequestError{Kind: classifyTransportError(err), Err: fmt.Errorf("request %s: %w", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RequestError{Kind: FailureRequest, Err: fmt.Errorf("%s returned %s", url, resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &RequestError{Kind: FailureRequest, Err: fmt.Errorf("decode %s: %w", url, err)}
	}

	return nil
}

func (s *httpSession) Close() {
	s.client.CloseIdleConnections()
}

func classifyTransportError(err error) FailureKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureConnection
}
