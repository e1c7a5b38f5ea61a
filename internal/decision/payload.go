package decision

import (
	"encoding/json"
	"fmt"
	"strings"
)

// claimPayload is the request body accepted by the decision service
type claimPayload struct {
	Claim claimFields `json:"claim"`
}

type claimFields struct {
	ClaimID        int64       `json:"claimId"`
	BilledAmt      json.Number `json:"billedAmt"`
	ServiceDate    string      `json:"serviceDate"`
	SubmissionDate string      `json:"submissionDate"`
}

// BuildPayload serializes a claim into the decision service's JSON request body
func BuildPayload(req ClaimRequest) ([]byte, error) {
	payload := claimPayload{
		Claim: claimFields{
			ClaimID: req.ClaimID,
			// Sent as a bare JSON number with cents precision
			BilledAmt:      json.Number(req.BilledAmt.StringFixed(2)),
			ServiceDate:    FormatDate(req.ServiceDate),
			SubmissionDate: FormatDate(req.SubmissionDate),
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling claim payload: %w", err)
	}
	return data, nil
}

// decisionResponse holds the fields read from a successful response
type decisionResponse struct {
	DecisionID  string
	ClaimStatus string
	Messages    []string
}

// parseDecisionResponse decodes a response body loosely.
// Missing or mistyped fields fall back to defaults instead of failing.
func parseDecisionResponse(body []byte) (*decisionResponse, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	resp := &decisionResponse{
		ClaimStatus: StatusUnknown,
		Messages:    []string{},
	}

	// Arrays, strings and numbers are valid JSON but carry no decision
	doc, ok := raw.(map[string]any)
	if !ok {
		return resp, nil
	}

	if id, ok := doc["__DecisionID__"]; ok && id != nil {
		resp.DecisionID = fmt.Sprint(id)
	}

	result, _ := doc["result"].(map[string]any)
	if result == nil {
		return resp, nil
	}

	if status, ok := result["claimStatus"].(string); ok && strings.TrimSpace(status) != "" {
		resp.ClaimStatus = status
	}

	if messages, ok := result["messages"].([]any); ok {
		for _, m := range messages {
			if m == nil {
				continue
			}
			if s, ok := m.(string); ok {
				resp.Messages = append(resp.Messages, s)
				continue
			}
			resp.Messages = append(resp.Messages, fmt.Sprint(m))
		}
	}

	return resp, nil
}
