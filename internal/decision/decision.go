package decision

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusError is the claim status reported when the decision service could not be reached
const StatusError = "Error"

// StatusUnknown is used when a successful response carries no claim status
const StatusUnknown = "Unknown"

// ClaimRequest contains the claim details sent for adjudication
type ClaimRequest struct {
	ClaimID        int64
	BilledAmt      decimal.Decimal
	ServiceDate    time.Time
	SubmissionDate time.Time
}

// ClaimResult is the normalized outcome of a single submission
type ClaimResult struct {
	Success      bool          `json:"success"`
	DecisionID   string        `json:"decision_id,omitempty"`
	ClaimStatus  string        `json:"claim_status"`
	Messages     []string      `json:"messages"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	RawRequest   []byte        `json:"-"`
	RawResponse  []byte        `json:"-"`
}

// ResponseTimeSeconds returns the elapsed time of the network call in seconds
func (r *ClaimResult) ResponseTimeSeconds() float64 {
	return r.ResponseTime.Seconds()
}

// Submitter defines the interface for sending claims to a decision service
type Submitter interface {
	// Submit sends the claim and always returns a populated result.
	// Transport and service failures are reported through ClaimResult.Success.
	Submit(ctx context.Context, req ClaimRequest) *ClaimResult
}
