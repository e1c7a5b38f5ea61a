package decision

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RequestTimeout is the hard limit for a single call to the decision service
const RequestTimeout = 30 * time.Second

// maxLoggedBody is how much of a non-200 response body is written to the log
const maxLoggedBody = 300

// Client implements the Submitter interface against the decision service REST endpoint
type Client struct {
	endpoint string
	username string
	password string
	client   *http.Client
}

// NewClient creates a new Client with the fixed request timeout
func NewClient(endpoint, username, password string) (*Client, error) {
	return NewClientWithHTTPClient(endpoint, username, password, &http.Client{
		Timeout: RequestTimeout,
	})
}

// NewClientWithHTTPClient creates a new Client with a custom http.Client for testing
func NewClientWithHTTPClient(endpoint, username, password string, httpClient *http.Client) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("decision service endpoint is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}
	return &Client{
		endpoint: endpoint,
		username: username,
		password: password,
		client:   httpClient,
	}, nil
}

// Endpoint returns the decision service URL the client posts to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Submit sends a claim to the decision service.
// It makes a single attempt and never returns a nil result.
func (c *Client) Submit(ctx context.Context, req ClaimRequest) *ClaimResult {
	body, err := BuildPayload(req)
	if err != nil {
		return failedResult(err, nil, nil, 0)
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	slog.Info("Submitting claim", "claim_id", req.ClaimID, "endpoint", c.endpoint)

	start := time.Now()
	respBody, status, err := c.post(ctx, body)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("Decision service call failed",
			"claim_id", req.ClaimID,
			"elapsed", fmt.Sprintf("%.2fs", elapsed.Seconds()),
			"error", err,
		)
		return failedResult(err, body, respBody, elapsed)
	}

	slog.Info("Response from decision service",
		"claim_id", req.ClaimID,
		"status", status,
		"elapsed", fmt.Sprintf("%.2fs", elapsed.Seconds()),
	)

	if status != http.StatusOK {
		slog.Warn("Non-200 response", "status", status, "body", truncate(respBody, maxLoggedBody))
		err := fmt.Errorf("decision service returned status %d %s", status, http.StatusText(status))
		return failedResult(err, body, respBody, elapsed)
	}

	decoded, err := parseDecisionResponse(respBody)
	if err != nil {
		slog.Error("Decision service returned an unreadable body",
			"claim_id", req.ClaimID,
			"error", err,
			"body", truncate(respBody, maxLoggedBody),
		)
		return failedResult(err, body, respBody, elapsed)
	}

	return &ClaimResult{
		Success:      true,
		DecisionID:   decoded.DecisionID,
		ClaimStatus:  decoded.ClaimStatus,
		Messages:     decoded.Messages,
		ResponseTime: elapsed,
		RawRequest:   body,
		RawResponse:  respBody,
	}
}

// post performs the HTTP exchange and returns the body and status code.
// A non-nil error means no usable response was received.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("calling decision service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// failedResult builds the error-shaped result returned for every failure
func failedResult(err error, reqBody, respBody []byte, elapsed time.Duration) *ClaimResult {
	return &ClaimResult{
		Success:      false,
		ClaimStatus:  StatusError,
		Messages:     []string{fmt.Sprintf("Failed to connect to decision service: %v", err)},
		ResponseTime: elapsed,
		Error:        fmt.Sprintf("API Error: %v", err),
		RawRequest:   reqBody,
		RawResponse:  respBody,
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
