package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"fleet-ops-backend/internal/pipeline"
)

type geoInput struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type evidenceInput struct {
	Kind string `json:"kind" binding:"required"`
	URL  string `json:"url" binding:"required"`
	Hash string `json:"hash"`
}

type statusEventRequest struct {
	AssignmentID string          `json:"assignment_id" binding:"required"`
	StatusType   string          `json:"status_type" binding:"required"`
	OccurredAt   time.Time       `json:"occurred_at" binding:"required"`
	Geo          *geoInput       `json:"geo"`
	Comment      string          `json:"comment"`
	Evidence     []evidenceInput `json:"evidence"`
}

type statusEventResponse struct {
	OK              bool     `json:"ok"`
	PTARecalculated bool     `json:"pta_recalculated"`
	PTA             string   `json:"pta,omitempty"`
	Source          string   `json:"source,omitempty"`
	AssignmentID    string   `json:"assignment_id"`
	OperatorID      string   `json:"operator_id"`
	Warnings        []string `json:"warnings,omitempty"`
}

// errorStatus maps a pipeline failure kind to its HTTP status.
var errorStatus = map[pipeline.ErrorKind]int{
	pipeline.KindBadRequest:               http.StatusBadRequest,
	pipeline.KindAssignmentNotFound:       http.StatusNotFound,
	pipeline.KindTripNotFound:             http.StatusNotFound,
	pipeline.KindInsertStatusEventFailed:  http.StatusInternalServerError,
	pipeline.KindTripUpdateFailed:         http.StatusInternalServerError,
	pipeline.KindAvailabilityUpsertFailed: http.StatusInternalServerError,
}

func fail(c *gin.Context, status int, kind string) {
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": kind})
}

// PostStatusEvent is the ingestion endpoint: it authenticates the caller,
// decodes the submission and runs it through the PTA pipeline.
func (h *Handler) PostStatusEvent(c *gin.Context) {
	if _, err := h.verifier.Verify(c.GetHeader("Authorization")); err != nil {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req statusEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Missing required fields surface as validation errors; anything else
		// means the body itself was not parseable JSON.
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			fail(c, http.StatusBadRequest, "bad_request")
		} else {
			fail(c, http.StatusBadRequest, "invalid_json")
		}
		return
	}

	preq := pipeline.Request{
		AssignmentID: req.AssignmentID,
		StatusType:   req.StatusType,
		OccurredAt:   req.OccurredAt,
		Comment:      req.Comment,
	}
	if req.Geo != nil {
		lat, lon := req.Geo.Lat, req.Geo.Lon
		preq.Lat, preq.Lon = &lat, &lon
	}
	for _, e := range req.Evidence {
		preq.Evidence = append(preq.Evidence, pipeline.EvidenceInput{Kind: e.Kind, URL: e.URL, Hash: e.Hash})
	}

	result, err := h.pipeline.Process(c.Request.Context(), preq)
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			status, ok := errorStatus[perr.Kind]
			if !ok {
				status = http.StatusInternalServerError
			}
			fail(c, status, string(perr.Kind))
			return
		}
		fail(c, http.StatusInternalServerError, "internal_error")
		return
	}

	resp := statusEventResponse{
		OK:              true,
		PTARecalculated: result.PTARecalculated,
		AssignmentID:    result.AssignmentID,
		OperatorID:      result.OperatorID,
		Warnings:        result.Warnings,
	}
	if result.PTA != nil {
		resp.PTA = result.PTA.UTC().Format(time.RFC3339)
		resp.Source = result.Source
	}
	c.JSON(http.StatusOK, resp)
}

// GetStatusEventCapability returns the static capability descriptor for the
// ingestion endpoint, used by clients for discovery.
func (h *Handler) GetStatusEventCapability(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"methods": []string{http.MethodPost, http.MethodOptions},
		"auth":    []string{"bearer"},
	})
}

type statusEventListItem struct {
	ID            int64    `json:"id"`
	AssignmentID  string   `json:"assignment_id"`
	StatusType    string   `json:"status_type"`
	OccurredAt    string   `json:"occurred_at"`
	Lat           *float64 `json:"lat,omitempty"`
	Lon           *float64 `json:"lon,omitempty"`
	Comment       string   `json:"comment,omitempty"`
	EvidenceCount int      `json:"evidence_count"`
}

// ListStatusEvents returns the most recent status events for the admin
// report screens.
func (h *Handler) ListStatusEvents(c *gin.Context) {
	events, err := h.store.ListStatusEvents(c.Request.Context(), 100)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve status events"})
		return
	}

	items := make([]statusEventListItem, 0, len(events))
	for _, e := range events {
		items = append(items, statusEventListItem{
			ID:            e.ID,
			AssignmentID:  e.AssignmentID,
			StatusType:    e.StatusType,
			OccurredAt:    e.OccurredAt.UTC().Format(time.RFC3339),
			Lat:           e.Lat,
			Lon:           e.Lon,
			Comment:       e.Comment,
			EvidenceCount: len(e.Evidences),
		})
	}
	c.JSON(http.StatusOK, items)
}
