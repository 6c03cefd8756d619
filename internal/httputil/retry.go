// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil retries HTTP calls until the payload is well-formed.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay is the first backoff between attempts; each later wait
// doubles it. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 5

// maxBodyBytes caps how much of a response body DoUntil buffers.
const maxBodyBytes = 32 << 20

// Accept decides whether a buffered response is well-formed enough to stop
// retrying.
type Accept func(status int, body []byte) bool

// ExhaustedError is returned by DoUntil when no attempt was accepted.
type ExhaustedError struct {
	Attempts   int
	StatusCode int
	Body       []byte
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no well-formed response after %d attempts (last HTTP %d)", e.Attempts, e.StatusCode)
}

// DoUntil executes req until accept reports the buffered response as
// well-formed, at most maxAttempts times, backing off between attempts.
// newReq is called for every attempt so requests with bodies can be rebuilt.
// It returns the accepted status and body, or an *ExhaustedError.
func DoUntil(ctx context.Context, client *http.Client, newReq func() (*http.Request, error), maxAttempts int, accept Accept) (int, []byte, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxRetries
	}

	var (
		lastStatus int
		lastBody   []byte
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, attempt-1); err != nil {
				return 0, nil, err
			}
		}

		req, err := newReq()
		if err != nil {
			return 0, nil, fmt.Errorf("creating request: %w", err)
		}
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			return 0, nil, err
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			return 0, nil, fmt.Errorf("reading response: %w", err)
		}

		if accept(resp.StatusCode, body) {
			return resp.StatusCode, body, nil
		}
		lastStatus, lastBody = resp.StatusCode, body
	}
	return 0, nil, &ExhaustedError{Attempts: maxAttempts, StatusCode: lastStatus, Body: lastBody}
}

func sleep(ctx context.Context, attempt int) error {
	backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
