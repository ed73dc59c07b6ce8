package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"fleet-ops-backend/internal/model"
)

type assignmentResponse struct {
	ID           string `json:"id"`
	TripID       string `json:"trip_id"`
	TripType     string `json:"trip_type"`
	TripStatus   string `json:"trip_status"`
	ETA          string `json:"eta,omitempty"`
	AAT          string `json:"aat,omitempty"`
	OperatorID   string `json:"operator_id"`
	OperatorName string `json:"operator_name"`
}

// ListAssignments handles GET /api/assignments for the planner screens.
func (h *Handler) ListAssignments(c *gin.Context) {
	assignments, err := h.store.ListAssignments(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	responses := make([]assignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := assignmentResponse{
			ID:           a.ID,
			TripID:       a.TripID,
			TripType:     a.Trip.Type,
			TripStatus:   a.Trip.Status,
			OperatorID:   a.OperatorID,
			OperatorName: a.Operator.Name,
		}
		if !a.Trip.ETA.IsZero() {
			resp.ETA = a.Trip.ETA.UTC().Format(time.RFC3339)
		}
		if a.Trip.AAT != nil {
			resp.AAT = a.Trip.AAT.UTC().Format(time.RFC3339)
		}
		responses = append(responses, resp)
	}
	c.JSON(http.StatusOK, responses)
}

type createAssignmentRequest struct {
	OperatorID   string    `json:"operator_id"`
	OperatorName string    `json:"operator_name"`
	TripType     string    `json:"trip_type" binding:"required"`
	TripRegion   string    `json:"trip_region"`
	ETA          time.Time `json:"eta"`
}

// CreateAssignment handles POST /api/assignments: planners create a trip and
// the assignment linking it to an operator in one call. When no operator_id
// is given a new operator record is created from operator_name.
func (h *Handler) CreateAssignment(c *gin.Context) {
	if _, err := h.verifier.Verify(c.GetHeader("Authorization")); err != nil {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "bad_request")
		return
	}
	if req.OperatorID == "" && req.OperatorName == "" {
		fail(c, http.StatusBadRequest, "bad_request")
		return
	}

	trip := model.Trip{
		ID:     uuid.NewString(),
		Type:   req.TripType,
		Region: req.TripRegion,
		ETA:    req.ETA.UTC(),
		Status: model.TripStatusPlanned,
	}
	assignment := model.Assignment{
		ID:         uuid.NewString(),
		TripID:     trip.ID,
		OperatorID: req.OperatorID,
	}

	err := h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if assignment.OperatorID == "" {
			operator := model.Operator{
				ID:     uuid.NewString(),
				Name:   req.OperatorName,
				Region: req.TripRegion,
			}
			if err := tx.Create(&operator).Error; err != nil {
				return err
			}
			assignment.OperatorID = operator.ID
		} else if err := tx.First(&model.Operator{}, "id = ?", assignment.OperatorID).Error; err != nil {
			return err
		}
		if err := tx.Create(&trip).Error; err != nil {
			return err
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "assignment_create_failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":          true,
		"id":          assignment.ID,
		"trip_id":     trip.ID,
		"operator_id": assignment.OperatorID,
	})
}
