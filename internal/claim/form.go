package claim

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/claims-precheck/internal/decision"
)

var minBilledAmt = decimal.New(1, -2) // 0.01

// FormValues holds the raw form inputs so they can be redisplayed
type FormValues struct {
	ClaimID        string
	BilledAmount   string
	ServiceDate    string
	SubmissionDate string
}

// Example is a named set of form defaults
type Example struct {
	Name  string
	Label string
}

// Examples lists the form presets in display order
var Examples = []Example{
	{Name: "custom", Label: "Custom"},
	{Name: "approved", Label: "Approved Example"},
	{Name: "rejected", Label: "Rejected Example"},
	{Name: "edge", Label: "Edge Case Example"},
}

// ExampleValues returns the form defaults for the named example.
// Unknown names fall back to the custom defaults, which are relative to now.
func ExampleValues(name string, now time.Time) FormValues {
	switch name {
	case "approved":
		return FormValues{ClaimID: "1001", BilledAmount: "1000.00", ServiceDate: "2024-05-05", SubmissionDate: "2024-06-23"}
	case "rejected":
		return FormValues{ClaimID: "2001", BilledAmount: "1000.00", ServiceDate: "2024-05-05", SubmissionDate: "2024-12-23"}
	case "edge":
		return FormValues{ClaimID: "3001", BilledAmount: "1500.00", ServiceDate: "2024-01-01", SubmissionDate: "2024-06-30"}
	default:
		return FormValues{
			ClaimID:        "4001",
			BilledAmount:   "500.00",
			ServiceDate:    now.AddDate(0, 0, -30).Format(time.DateOnly),
			SubmissionDate: now.Format(time.DateOnly),
		}
	}
}

// ParseClaim validates the form inputs and converts them to a ClaimRequest.
// Date ordering is checked later by Service.Submit.
func ParseClaim(v FormValues) (decision.ClaimRequest, error) {
	var req decision.ClaimRequest

	claimID, err := strconv.ParseInt(strings.TrimSpace(v.ClaimID), 10, 64)
	if err != nil || claimID < 1 {
		return req, fmt.Errorf("claim ID must be a whole number of at least 1")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(v.BilledAmount))
	if err != nil {
		return req, fmt.Errorf("billed amount must be a number")
	}
	amount = amount.Round(2)
	if amount.LessThan(minBilledAmt) {
		return req, fmt.Errorf("billed amount must be at least 0.01")
	}

	serviceDate, err := time.Parse(time.DateOnly, strings.TrimSpace(v.ServiceDate))
	if err != nil {
		return req, fmt.Errorf("service date must be in YYYY-MM-DD format")
	}

	submissionDate, err := time.Parse(time.DateOnly, strings.TrimSpace(v.SubmissionDate))
	if err != nil {
		return req, fmt.Errorf("submission date must be in YYYY-MM-DD format")
	}

	return decision.ClaimRequest{
		ClaimID:        claimID,
		BilledAmt:      amount,
		ServiceDate:    serviceDate,
		SubmissionDate: submissionDate,
	}, nil
}
