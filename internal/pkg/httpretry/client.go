// Package httpretry provides an HTTP client wrapper that honors the
// SparkPost rate limiter: a 429 response suspends the caller for a
// constant snooze interval, then the identical request is resent. The
// retry is explicitly unbounded: rate limiting is a pacing signal, not
// a failure.
package httpretry

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RateLimitClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitClient wraps an HTTPDoer with 429 handling. Every other
// status code, including 5xx, is returned to the caller untouched so
// per-batch failure policy stays in one place.
type RateLimitClient struct {
	client HTTPDoer
	policy func() backoff.BackOff
}

// NewRateLimitClient creates a RateLimitClient that waits snooze
// between resends. If client is nil, a default http.Client with a 60s
// timeout is used.
func NewRateLimitClient(client HTTPDoer, snooze time.Duration) *RateLimitClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if snooze <= 0 {
		snooze = 10 * time.Second
	}
	return &RateLimitClient{
		client: client,
		policy: func() backoff.BackOff { return backoff.NewConstantBackOff(snooze) },
	}
}

// Do executes the request, snoozing and resending for as long as the
// server answers 429. The request must have GetBody set when it carries
// a body, or the resend cannot rewind it.
func (rc *RateLimitClient) Do(req *http.Request) (*http.Response, error) {
	bo := rc.policy()

	for attempt := 0; ; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		if attempt > 0 {
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, fmt.Errorf("httpretry: failed to reset request body: %w", err)
				}
				req.Body = body
			}

			delay := bo.NextBackOff()
			log.WithFields(log.Fields{
				"method": req.Method,
				"path":   req.URL.Path,
				"snooze": delay,
			}).Warn("rate limited, pausing before resend")

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-req.Context().Done():
				timer.Stop()
				return nil, req.Context().Err()
			}
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Drain for connection reuse before the resend.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}
