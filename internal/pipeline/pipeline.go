// Package pipeline implements the PTA recalculation pipeline triggered by
// driver status events: record the event and its evidence, and on arrival at
// destination update the trip, resolve the buffer rule, compute the new PTA
// and publish the operator's availability.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fleet-ops-backend/internal/model"
	"fleet-ops-backend/internal/pta"
	"fleet-ops-backend/internal/store"
)

// ErrorKind is the stable machine-readable failure classification exposed to
// callers. Internal error detail is logged server-side only.
type ErrorKind string

const (
	KindBadRequest               ErrorKind = "bad_request"
	KindAssignmentNotFound       ErrorKind = "assignment_not_found"
	KindTripNotFound             ErrorKind = "trip_not_found"
	KindInsertStatusEventFailed  ErrorKind = "insert_status_event_failed"
	KindTripUpdateFailed         ErrorKind = "trip_update_failed"
	KindAvailabilityUpsertFailed ErrorKind = "availability_upsert_failed"
)

// Error is a classified pipeline failure. The HTTP layer translates Kind into
// a status code and response body; Err carries the wrapped cause for logs.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func failed(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// EvidenceInput is one attachment submitted alongside a status event.
type EvidenceInput struct {
	Kind string
	URL  string
	Hash string
}

// Request is a validated status-event submission.
type Request struct {
	AssignmentID string
	StatusType   string
	OccurredAt   time.Time
	Lat          *float64
	Lon          *float64
	Comment      string
	Evidence     []EvidenceInput
}

// Result is the outcome of a processed status event. Warnings carries
// non-fatal problems (evidence inserts, rule lookups) that must not fail the
// request but should be visible to tests and logs.
type Result struct {
	EventID         int64
	AssignmentID    string
	OperatorID      string
	PTARecalculated bool
	PTA             *time.Time
	Source          string
	Warnings        []string
}

// Notifier is told when an operator's availability has been republished.
type Notifier interface {
	AvailabilityPublished(operatorID string)
}

// Service sequences the pipeline steps against an injected store.
type Service struct {
	store    store.Store
	notifier Notifier
}

// NewService creates a pipeline service. notifier may be nil.
func NewService(s store.Store, notifier Notifier) *Service {
	return &Service{store: s, notifier: notifier}
}

// Process runs one status-event submission through the pipeline.
//
// The event insert is fatal on failure; evidence inserts are best-effort and
// only surface as warnings, the event is already durably recorded by then.
// The arrival branch (trip update, rule lookup, PTA computation, availability
// upsert) runs only for ARRIVAL_DESTINATION events.
func (svc *Service) Process(ctx context.Context, req Request) (*Result, error) {
	if req.AssignmentID == "" || req.StatusType == "" || req.OccurredAt.IsZero() {
		return nil, failed(KindBadRequest, errors.New("assignment_id, status_type and occurred_at are required"))
	}

	// An unresolvable assignment is reported as not-found whatever the store
	// said; no write has happened yet.
	assignment, err := svc.store.GetAssignment(ctx, req.AssignmentID)
	if err != nil {
		return nil, failed(KindAssignmentNotFound, err)
	}

	event := model.StatusEvent{
		AssignmentID:     assignment.ID,
		StatusType:       req.StatusType,
		OccurredAt:       req.OccurredAt.UTC(),
		Lat:              req.Lat,
		Lon:              req.Lon,
		Comment:          req.Comment,
		EvidenceRequired: len(req.Evidence) > 0,
	}
	if err := svc.store.InsertStatusEvent(ctx, &event); err != nil {
		return nil, failed(KindInsertStatusEventFailed, err)
	}

	result := &Result{
		EventID:      event.ID,
		AssignmentID: assignment.ID,
		OperatorID:   assignment.OperatorID,
	}

	if len(req.Evidence) > 0 {
		evidences := make([]model.Evidence, len(req.Evidence))
		for i, e := range req.Evidence {
			evidences[i] = model.Evidence{
				StatusEventID: event.ID,
				Kind:          e.Kind,
				URL:           e.URL,
				Hash:          e.Hash,
			}
		}
		if err := svc.store.InsertEvidences(ctx, evidences); err != nil {
			log.Printf("evidence insert failed for event %d: %v", event.ID, err)
			result.Warnings = append(result.Warnings, "evidence_insert_failed")
		}
	}

	if req.StatusType != model.StatusArrivalDestination {
		return result, nil
	}

	trip, err := svc.store.GetTrip(ctx, assignment.TripID)
	if err != nil {
		return nil, failed(KindTripNotFound, err)
	}

	if err := svc.store.MarkTripArrived(ctx, trip.ID, event.OccurredAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, failed(KindTripNotFound, err)
		}
		return nil, failed(KindTripUpdateFailed, err)
	}

	rule, err := svc.store.FindPTARule(ctx, trip.Type, trip.Region)
	if err != nil {
		// Rule lookup problems fall back to the built-in buffers, same as a
		// missing rule row.
		log.Printf("pta rule lookup failed for trip %s: %v", trip.ID, err)
		result.Warnings = append(result.Warnings, "rule_lookup_failed")
		rule = nil
	}

	var ptaRule *pta.Rule
	if rule != nil {
		ptaRule = &pta.Rule{MinHours: rule.MinHours, MaxHours: rule.MaxHours}
	}
	projected, bufferHours := pta.Compute(event.OccurredAt, trip.Type, ptaRule)
	log.Printf("recalculated pta for operator %s: %s (buffer %.2fh)", assignment.OperatorID, projected.Format(time.RFC3339), bufferHours)

	availability := model.Availability{
		OperatorID:   assignment.OperatorID,
		PTA:          projected,
		Source:       model.AvailabilitySourceAAT,
		Reason:       model.StatusArrivalDestination,
		ComputedFrom: event.OccurredAt,
	}
	if err := svc.store.UpsertAvailability(ctx, &availability); err != nil {
		return nil, failed(KindAvailabilityUpsertFailed, err)
	}

	if svc.notifier != nil {
		svc.notifier.AvailabilityPublished(assignment.OperatorID)
	}

	result.PTARecalculated = true
	result.PTA = &projected
	result.Source = model.AvailabilitySourceAAT
	return result, nil
}
