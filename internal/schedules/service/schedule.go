package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleerrors "custodia/internal/schedules/errors"
	"custodia/internal/schedules/repository"
	"custodia/internal/schedules/validator"
	"custodia/pkg/config"
	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
	"custodia/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// RoomDirectory lists the bookable rooms from the room directory
// collaborator.
type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]model.Room, error)
}

// CleanerRoster lists the staff members eligible for schedule assignment.
type CleanerRoster interface {
	ListCleaners(ctx context.Context, role string) ([]model.Cleaner, error)
}

// EventPublisher emits schedule lifecycle events. A nil publisher disables
// event publishing without touching the service logic.
type EventPublisher interface {
	PublishScheduleEvent(ctx context.Context, eventType string, sc *model.Schedule) error
}

// Lifecycle event types, mirrored by internal/schedules/events.
const (
	eventCreated     = "schedule.created"
	eventUpdated     = "schedule.updated"
	eventDeleted     = "schedule.deleted"
	eventApproved    = "schedule.approved"
	eventDisapproved = "schedule.disapproved"
)

type ScheduleService interface {
	Create(ctx context.Context, sc *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetAll(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.ScheduleView, int64, error)
	Update(ctx context.Context, id string, updates *model.ScheduleUpdate) (*model.Schedule, error)
	Delete(ctx context.Context, id string) error
	Approve(ctx context.Context, id string) (*model.Schedule, error)
	Disapprove(ctx context.Context, id string) (*model.Schedule, error)
	Report(ctx context.Context, year int, month int) (*model.MonthlyReport, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	lockRepo  repository.ScheduleLockRepository
	validator *validator.ScheduleValidator
	rooms     RoomDirectory
	cleaners  CleanerRoster
	events    EventPublisher
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	lockRepo repository.ScheduleLockRepository,
	validator *validator.ScheduleValidator,
	rooms RoomDirectory,
	cleaners CleanerRoster,
	events EventPublisher,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		rooms:     rooms,
		cleaners:  cleaners,
		events:    events,
		cfg:       cfg,
	}
}

func (s *scheduleService) Create(ctx context.Context, sc *model.Schedule) error {
	s.sanitize(sc)
	s.applyDefaults(sc)

	if sc.Status == model.StatusApproved {
		return apperrors.Validation("New schedules cannot start as approved", map[string]any{
			"field": "status",
		})
	}
	// Approval timestamps are owned by the approve operation
	sc.ApprovedAt = nil

	if err := s.validate(sc); err != nil {
		return err
	}

	// Acquire advisory lock to prevent race conditions
	lockID, err := s.acquireSlotLock(ctx, sc.RoomID, sc.Date)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release schedule lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyRoomFree(sessCtx, sc); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, sc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("Room is already scheduled for this date")
			}
			return apperrors.Internal("Failed to create schedule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create schedule", "error", err)
		return err
	}

	s.publishEvent(ctx, eventCreated, sc)
	s.cfg.Log.Info("Schedule created successfully",
		"id", sc.ID,
		"room_id", sc.RoomID,
		"cleaner_id", sc.CleanerID,
		"date", sc.Date,
	)
	return nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	return s.fetchByID(ctx, id)
}

func (s *scheduleService) Update(ctx context.Context, id string, updates *model.ScheduleUpdate) (*model.Schedule, error) {
	existing, err := s.fetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Schedule update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}
	if updates.Status == model.StatusApproved {
		return nil, apperrors.Validation("Status 'approved' can only be set through the approve operation", map[string]any{
			"field": "status",
		})
	}

	merged := s.mergeScheduleUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	slotChanged := merged.RoomID != existing.RoomID || merged.Date != existing.Date
	if slotChanged {
		lockID, err := s.acquireSlotLock(ctx, merged.RoomID, merged.Date)
		if err != nil {
			return nil, err
		}
		defer func() {
			if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
				s.cfg.Log.Warn("Failed to release schedule lock", "lock_id", lockID, "error", releaseErr)
			}
		}()
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyRoomFree(sessCtx, merged); err != nil {
			return err
		}
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("Room is already scheduled for this date")
			}
			return apperrors.Internal("Failed to update schedule", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update schedule", "id", id, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, eventUpdated, merged)
	s.cfg.Log.Info("Schedule updated successfully", "id", id)
	return merged, nil
}

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	existing, err := s.fetchByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Schedule", id)
		}
		return apperrors.Internal("Failed to delete schedule", err)
	}

	s.publishEvent(ctx, eventDeleted, existing)
	s.cfg.Log.Info("Schedule deleted successfully", "id", id)
	return nil
}

// --- Helpers ---

func (s *scheduleService) fetchByID(ctx context.Context, id string) (*model.Schedule, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule ID cannot be empty")
	}

	sc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Schedule", id)
		}
		if errors.Is(err, scheduleerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid schedule ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve schedule", err)
	}

	return sc, nil
}

func (s *scheduleService) sanitize(sc *model.Schedule) {
	sc.RoomID = sanitizer.NormalizeID(sc.RoomID)
	sc.CleanerID = sanitizer.NormalizeID(sc.CleanerID)
	sc.Date = sanitizer.NormalizeID(sc.Date)
	sc.StartTime = sanitizer.NormalizeID(sc.StartTime)
	sc.EndTime = sanitizer.NormalizeID(sc.EndTime)
	sc.Status = sanitizer.NormalizeID(sc.Status)
}

func (s *scheduleService) applyDefaults(sc *model.Schedule) {
	if sc.Status == "" {
		sc.Status = model.StatusPending
	}
}

func (s *scheduleService) mergeScheduleUpdates(existing *model.Schedule, updates *model.ScheduleUpdate) *model.Schedule {
	merged := *existing

	if updates.RoomID != "" {
		merged.RoomID = updates.RoomID
	}
	if updates.CleanerID != "" {
		merged.CleanerID = updates.CleanerID
	}
	if updates.Date != "" {
		merged.Date = updates.Date
	}
	if updates.StartTime != "" {
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		merged.EndTime = updates.EndTime
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	// The approval timestamp exists exactly while the status is approved;
	// any edit that lands elsewhere clears it.
	if merged.Status != model.StatusApproved {
		merged.ApprovedAt = nil
	}

	return &merged
}

func (s *scheduleService) validate(sc *model.Schedule) error {
	if err := s.validator.Validate(sc); err != nil {
		s.cfg.Log.Warn("Schedule validation failed", "error", err)
		return apperrors.Validation("Schedule validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// verifyRoomFree enforces one schedule per room per date. The check is
// status-agnostic: a cancelled record still blocks the slot until it is
// deleted or moved.
func (s *scheduleService) verifyRoomFree(ctx context.Context, sc *model.Schedule) error {
	existing, err := s.repo.FindByRoomAndDate(ctx, sc.RoomID, sc.Date)
	if err != nil {
		return apperrors.Internal("Failed to check existing schedules", err)
	}

	for _, other := range existing {
		if other.ID == sc.ID {
			continue
		}
		return apperrors.Conflict("Room is already scheduled for this date")
	}
	return nil
}

// acquireSlotLock creates an advisory lock to prevent concurrent schedule creation
// Returns the lock ID if successful, or conflict error if lock already exists
func (s *scheduleService) acquireSlotLock(ctx context.Context, roomID, date string) (string, error) {
	lockID := fmt.Sprintf("schedule_lock_%s_%s", roomID, date)

	lock := &model.ScheduleLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second), // Auto-expire after 10 seconds
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This room and date is currently being scheduled by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire schedule lock", err)
	}

	return lockID, nil
}

// releaseSlotLock removes the advisory lock
func (s *scheduleService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *scheduleService) publishEvent(ctx context.Context, eventType string, sc *model.Schedule) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishScheduleEvent(ctx, eventType, sc); err != nil {
		s.cfg.Log.Warn("Failed to publish schedule event",
			"event_type", eventType,
			"id", sc.ID,
			"error", err,
		)
	}
}
