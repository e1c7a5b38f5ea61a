package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zombor/claims-precheck/internal/decision"
)

// ErrSubmissionBeforeService is returned when a claim is submitted before its service date
var ErrSubmissionBeforeService = errors.New("submission date cannot be before service date")

// IDGenerator generates unique IDs for audit records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp and a sequence number.
// IDs are zero padded so they sort in creation order.
type defaultIDGenerator struct {
	seq atomic.Uint64
}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%020d-%06d", time.Now().UnixNano(), g.seq.Add(1)%1000000)
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles claim submissions on behalf of a session
type Service struct {
	submitter   decision.Submitter
	audit       AuditLog
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source.
// A nil audit log disables auditing.
func NewService(submitter decision.Submitter, audit AuditLog) *Service {
	return NewServiceWithDeps(submitter, audit, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(submitter decision.Submitter, audit AuditLog, idGen IDGenerator, timeSrc TimeSource) *Service {
	if audit == nil {
		audit = NopAuditLog{}
	}
	return &Service{
		submitter:   submitter,
		audit:       audit,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Now returns the service's current time
func (s *Service) Now() time.Time {
	return s.timeSource.Now()
}

// Submit validates the claim, sends it to the decision service and records the outcome in sess.
// The only error returned is ErrSubmissionBeforeService; service failures are reported in the result.
func (s *Service) Submit(ctx context.Context, sess *Session, req decision.ClaimRequest) (*decision.ClaimResult, error) {
	slog.Info("User submitted claim",
		"session_id", sess.ID,
		"claim_id", req.ClaimID,
		"amount", req.BilledAmt.StringFixed(2),
		"service_date", req.ServiceDate.Format(time.DateOnly),
		"submission_date", req.SubmissionDate.Format(time.DateOnly),
	)

	daysDifference := decision.DaysBetween(req.ServiceDate, req.SubmissionDate)
	if daysDifference < 0 {
		return nil, ErrSubmissionBeforeService
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result := s.submitter.Submit(ctx, req)

	if result.Success {
		sess.history.Record(HistoryEntry{
			ClaimID:        req.ClaimID,
			Status:         result.ClaimStatus,
			DaysDifference: daysDifference,
			Messages:       strings.Join(result.Messages, "; "),
			Timestamp:      s.timeSource.Now(),
		})
	}

	sess.setLastResult(result, daysDifference, req.ClaimID)

	s.recordAudit(sess.ID, req, result)

	return result, nil
}

// recordAudit appends an audit record. Failures are logged and otherwise ignored.
func (s *Service) recordAudit(sessionID string, req decision.ClaimRequest, result *decision.ClaimResult) {
	record := &AuditRecord{
		ID:           s.idGenerator.Generate(),
		SessionID:    sessionID,
		ClaimID:      req.ClaimID,
		Success:      result.Success,
		ClaimStatus:  result.ClaimStatus,
		DecisionID:   result.DecisionID,
		ResponseTime: result.ResponseTime,
		Request:      string(result.RawRequest),
		Response:     string(result.RawResponse),
		CreatedAt:    s.timeSource.Now(),
	}
	if err := s.audit.Append(record); err != nil {
		slog.Warn("Failed to write audit record", "claim_id", req.ClaimID, "error", err)
	}
}

// ListAudit returns the most recent audit records, newest first
func (s *Service) ListAudit(limit int) ([]*AuditRecord, error) {
	records, err := s.audit.List(limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit records: %w", err)
	}
	return records, nil
}

// GetAudit retrieves a single audit record
func (s *Service) GetAudit(id string) (*AuditRecord, error) {
	record, err := s.audit.Get(id)
	if err != nil {
		return nil, fmt.Errorf("getting audit record: %w", err)
	}
	return record, nil
}
