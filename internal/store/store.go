package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-ops-backend/internal/model"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations the pipeline and
// handlers perform. It is injected everywhere so tests can swap in an
// in-memory database.
type Store interface {
	DB() *gorm.DB

	GetAssignment(ctx context.Context, id string) (*model.Assignment, error)
	GetTrip(ctx context.Context, id string) (*model.Trip, error)
	MarkTripArrived(ctx context.Context, tripID string, arrivedAt time.Time) error
	FindPTARule(ctx context.Context, tripType, region string) (*model.PTARule, error)
	InsertStatusEvent(ctx context.Context, event *model.StatusEvent) error
	InsertEvidences(ctx context.Context, evidences []model.Evidence) error
	UpsertAvailability(ctx context.Context, availability *model.Availability) error
	GetAvailability(ctx context.Context, operatorID string) (*model.Availability, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	ListStatusEvents(ctx context.Context, limit int) ([]model.StatusEvent, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers and workers that run
// their own queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// GetAssignment resolves an assignment id to its trip and operator references.
func (s *gormStore) GetAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := s.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment %s: %w", id, err)
	}
	return &assignment, nil
}

// GetTrip fetches a trip by id.
func (s *gormStore) GetTrip(ctx context.Context, id string) (*model.Trip, error) {
	var trip model.Trip
	if err := s.db.WithContext(ctx).First(&trip, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch trip %s: %w", id, err)
	}
	return &trip, nil
}

// MarkTripArrived stamps the trip's actual arrival time and moves it to the
// arrived status.
func (s *gormStore) MarkTripArrived(ctx context.Context, tripID string, arrivedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.Trip{}).
		Where("id = ?", tripID).
		Updates(map[string]any{
			"aat":    arrivedAt.UTC(),
			"status": model.TripStatusArrived,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update trip %s: %w", tripID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindPTARule returns the buffer rule for a trip type, or nil when none
// exists. Tie-break when multiple rows match: region-specific rows sort before
// region-blank rows, then the most recently created row wins.
func (s *gormStore) FindPTARule(ctx context.Context, tripType, region string) (*model.PTARule, error) {
	query := s.db.WithContext(ctx).Where("trip_type = ?", tripType)
	if region != "" {
		query = query.Where("region IN ?", []string{region, ""})
	}

	var rule model.PTARule
	err := query.Order("region DESC").Order("created_at DESC").First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up pta rule for trip type %s: %w", tripType, err)
	}
	return &rule, nil
}

// InsertStatusEvent persists a single status event and fills in its id.
func (s *gormStore) InsertStatusEvent(ctx context.Context, event *model.StatusEvent) error {
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to insert status event: %w", err)
	}
	return nil
}

// InsertEvidences persists the evidence rows attached to a status event.
func (s *gormStore) InsertEvidences(ctx context.Context, evidences []model.Evidence) error {
	if len(evidences) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&evidences).Error; err != nil {
		return fmt.Errorf("failed to insert evidences: %w", err)
	}
	return nil
}

// UpsertAvailability writes the single current-availability row for the
// operator, replacing any prior row. The conflict clause only applies the
// replacement when the incoming record was computed from an arrival that is
// not older than the stored one, so a stale concurrent event cannot clobber
// a newer projection.
func (s *gormStore) UpsertAvailability(ctx context.Context, availability *model.Availability) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operator_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pta", "source", "reason", "computed_from", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "excluded.computed_from >= availabilities.computed_from"},
		}},
	}).Create(availability).Error
	if err != nil {
		return fmt.Errorf("failed to upsert availability for operator %s: %w", availability.OperatorID, err)
	}
	return nil
}

// GetAvailability reads the current availability row for an operator.
func (s *gormStore) GetAvailability(ctx context.Context, operatorID string) (*model.Availability, error) {
	var availability model.Availability
	if err := s.db.WithContext(ctx).First(&availability, "operator_id = ?", operatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch availability for operator %s: %w", operatorID, err)
	}
	return &availability, nil
}

// ListAssignments returns all assignments with their trip and operator.
func (s *gormStore) ListAssignments(ctx context.Context) ([]model.Assignment, error) {
	var assignments []model.Assignment
	if err := s.db.WithContext(ctx).Preload("Trip").Preload("Operator").
		Order("created_at DESC").Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

// ListStatusEvents returns the most recent status events with their evidence.
func (s *gormStore) ListStatusEvents(ctx context.Context, limit int) ([]model.StatusEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []model.StatusEvent
	if err := s.db.WithContext(ctx).Preload("Evidences").
		Order("occurred_at DESC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list status events: %w", err)
	}
	return events, nil
}
