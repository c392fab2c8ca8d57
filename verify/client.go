// Package verify talks to the external identity-document verification
// collaborator: an AI gateway fronted endpoint that receives a card photo and
// answers with a verdict and a human-readable reason.
package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contractflow/contract"
)

var (
	// ErrRateLimited matches collaborator responses with HTTP 429.
	ErrRateLimited = errors.New("verify: rate limited")
	// ErrQuotaExhausted matches collaborator responses with HTTP 402.
	ErrQuotaExhausted = errors.New("verify: quota exhausted")
)

const (
	reasonRateLimited   = "too many verification requests, try again in a moment"
	reasonQuotaExceeded = "insufficient verification credits"
	reasonUnavailable   = "verification service unavailable, please retry"
)

// Error is a transport-level failure talking to the collaborator. Status is
// the HTTP status code, or 0 for network and decoding failures. The Reason is
// suitable for showing to the person who uploaded the photo.
type Error struct {
	Status int
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("verify: collaborator call failed (status=%d): %v", e.Status, e.cause)
	}
	return fmt.Sprintf("verify: collaborator returned status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

// UserReason is picked up by the verification gate when turning this failure
// into a rejected photo slot.
func (e *Error) UserReason() string { return e.Reason }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrQuotaExhausted:
		return e.Status == http.StatusPaymentRequired
	default:
		return false
	}
}

// Client calls the document-verification endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a client with a bounded request timeout; the gate applies
// its own context deadline on top.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Verify submits one encoded card photo and returns the collaborator's
// verdict. Rate-limit (429) and quota (402) responses, any other non-2xx
// status, and network or decoding failures all come back as a *Error.
func (c *Client) Verify(ctx context.Context, image string) (contract.Verdict, error) {
	body, err := json.Marshal(map[string]string{"image": image})
	if err != nil {
		return contract.Verdict{}, fmt.Errorf("verify: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/verify-cin", bytes.NewReader(body))
	if err != nil {
		return contract.Verdict{}, fmt.Errorf("verify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return contract.Verdict{}, &Error{Reason: reasonUnavailable, cause: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return contract.Verdict{}, &Error{Status: resp.StatusCode, Reason: reasonRateLimited}
	case resp.StatusCode == http.StatusPaymentRequired:
		return contract.Verdict{}, &Error{Status: resp.StatusCode, Reason: reasonQuotaExceeded}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return contract.Verdict{}, &Error{Status: resp.StatusCode, Reason: reasonUnavailable}
	}

	var out struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
		Err    string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return contract.Verdict{}, &Error{Status: resp.StatusCode, Reason: reasonUnavailable, cause: err}
	}

	reason := out.Reason
	if reason == "" {
		reason = out.Err
	}
	return contract.Verdict{Valid: out.Valid, Reason: reason}, nil
}
