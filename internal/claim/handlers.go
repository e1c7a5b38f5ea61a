package claim

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/zombor/claims-precheck/internal/decision"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes an error response as {"error": message}
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{
		"error": message,
	})
}

// handleHealth reports that the process is serving
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	example := r.URL.Query().Get("example")
	s.renderIndex(w, http.StatusOK, sess, example, ExampleValues(example, s.service.Now()), "")
}

// handleSubmitClaim handles the claim form submission
func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if err := r.ParseForm(); err != nil {
		slog.Error("Error parsing form", "error", err)
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	values := FormValues{
		ClaimID:        r.PostForm.Get("claim_id"),
		BilledAmount:   r.PostForm.Get("billed_amount"),
		ServiceDate:    r.PostForm.Get("service_date"),
		SubmissionDate: r.PostForm.Get("submission_date"),
	}
	example := r.PostForm.Get("example")

	req, err := ParseClaim(values)
	if err != nil {
		s.renderIndex(w, http.StatusBadRequest, sess, example, values, err.Error())
		return
	}

	if _, err := s.service.Submit(r.Context(), sess, req); err != nil {
		s.renderIndex(w, http.StatusBadRequest, sess, example, values, err.Error())
		return
	}

	target := "/"
	if example != "" {
		target = "/?example=" + url.QueryEscape(example)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleClearHistory empties the session history from the form
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	sess.ClearHistory()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// claimRequestBody is the JSON body accepted by the submit API
type claimRequestBody struct {
	ClaimID        int64           `json:"claim_id"`
	BilledAmount   decimal.Decimal `json:"billed_amount"`
	ServiceDate    string          `json:"service_date"`
	SubmissionDate string          `json:"submission_date"`
}

// resultResponse is the JSON view of a ClaimResult
type resultResponse struct {
	*decision.ClaimResult
	ResponseTimeSeconds float64         `json:"response_time_seconds"`
	RawRequest          json.RawMessage `json:"raw_request,omitempty"`
	RawResponse         string          `json:"raw_response,omitempty"`
}

func newResultResponse(result *decision.ClaimResult) *resultResponse {
	if result == nil {
		return nil
	}
	resp := &resultResponse{
		ClaimResult:         result,
		ResponseTimeSeconds: result.ResponseTimeSeconds(),
		RawResponse:         string(result.RawResponse),
	}
	if json.Valid(result.RawRequest) {
		resp.RawRequest = result.RawRequest
	}
	return resp
}

// handleAPISubmitClaim submits a claim from a JSON body
func (s *Server) handleAPISubmitClaim(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	var body claimRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req, err := ParseClaim(FormValues{
		ClaimID:        strconv.FormatInt(body.ClaimID, 10),
		BilledAmount:   body.BilledAmount.String(),
		ServiceDate:    body.ServiceDate,
		SubmissionDate: body.SubmissionDate,
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.service.Submit(r.Context(), sess, req)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":          newResultResponse(result),
		"days_difference": decision.DaysBetween(req.ServiceDate, req.SubmissionDate),
	})
}

// handleAPISession returns the caller's session state
func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	view := s.session(w, r).Snapshot()

	response := map[string]any{
		"session_id":  view.ID,
		"history":     view.History,
		"last_result": newResultResponse(view.LastResult),
	}
	if view.LastResult != nil {
		response["last_claim_id"] = view.LastClaimID
		response["last_days_difference"] = view.LastDaysDifference
	}
	writeJSON(w, http.StatusOK, response)
}

// handleAPIListHistory returns the session history, most recent first
func (s *Server) handleAPIListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(w, r).History())
}

// handleAPIClearHistory empties the session history
func (s *Server) handleAPIClearHistory(w http.ResponseWriter, r *http.Request) {
	s.session(w, r).ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

// handleAPIListAudit returns recent audit records
func (s *Server) handleAPIListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxAuditLimit)
	}

	records, err := s.service.ListAudit(limit)
	if errors.Is(err, ErrAuditDisabled) {
		jsonError(w, "Audit log is not enabled", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("Error listing audit records", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleAPIGetAudit returns a single audit record
func (s *Server) handleAPIGetAudit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.service.GetAudit(id)
	if errors.Is(err, ErrAuditDisabled) {
		jsonError(w, "Audit log is not enabled", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "Audit record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// renderIndex renders the page with the session's current state
func (s *Server) renderIndex(w http.ResponseWriter, code int, sess *Session, example string, values FormValues, formError string) {
	view := sess.Snapshot()

	data := indexPage{
		Examples:  Examples,
		Example:   example,
		Form:      values,
		FormError: formError,
		History:   view.History,
	}
	if view.LastResult != nil {
		data.Result = newResultView(view)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		slog.Error("Error rendering page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

// newResultView prepares the last result for the results panel
func newResultView(view SessionView) *resultView {
	result := view.LastResult
	rv := &resultView{
		ClaimID:        view.LastClaimID,
		Failed:         !result.Success,
		Error:          result.Error,
		Status:         result.ClaimStatus,
		Approved:       result.ClaimStatus == "Approved",
		DecisionID:     result.DecisionID,
		Messages:       result.Messages,
		DaysDifference: view.LastDaysDifference,
		ResponseTime:   fmt.Sprintf("%.2f", result.ResponseTimeSeconds()),
		RequestJSON:    prettyJSON(result.RawRequest),
		ResponseJSON:   prettyJSON(result.RawResponse),
	}
	if rv.DecisionID == "" {
		rv.DecisionID = "N/A"
	}
	return rv
}

// prettyJSON indents a JSON document, returning non-JSON bodies unchanged
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
