package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxErrorBody bounds how much of a failed response is read to find a reason.
const maxErrorBody = 64 << 10

var errNoHTTPClient = errors.New("http client not configured")

// NewBreaker returns the circuit breaker used for one upstream service.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// Do executes a single request through the circuit breaker. There are no retries.
// On success the caller owns the response body.
func Do(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	service string,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if client == nil {
		return nil, &TransportError{Service: service, Err: errNoHTTPClient}
	}

	req, err := buildRequest()
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", service, err)
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, &TransportError{Service: service, Err: execErr}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &StatusError{
				Service: service,
				Status:  resp.StatusCode,
				Reason:  ReasonFromBody(body),
			}
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &TransportError{Service: service, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", service)
	}
	return resp, nil
}

// ReasonFromBody extracts a human-readable failure reason from an error body.
// It understands {"reason": ...}, {"message": ...} and {"error": {"message": ...}}.
func ReasonFromBody(body []byte) string {
	var payload struct {
		Reason  string          `json:"reason"`
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Reason != "" {
		return payload.Reason
	}
	if payload.Message != "" {
		return payload.Message
	}

	var nested struct {
		Message string `json:"message"`
	}
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &nested) == nil {
		return nested.Message
	}
	var plain string
	if len(payload.Error) > 0 && json.Unmarshal(payload.Error, &plain) == nil {
		return plain
	}
	return ""
}
