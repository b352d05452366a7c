package service

import (
	"context"
	"time"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Approve marks a completed schedule as supervisor-approved and stamps the
// approval time. Any other starting status is rejected; approval is the
// only path that sets the timestamp.
func (s *scheduleService) Approve(ctx context.Context, id string) (*model.Schedule, error) {
	sc, err := s.fetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sc.Status != model.StatusCompleted {
		s.cfg.Log.Warn("Approve rejected", "id", id, "status", sc.Status)
		return nil, apperrors.InvalidTransition("Only completed schedules can be approved")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	sc.Status = model.StatusApproved
	sc.ApprovedAt = &now

	if err := s.applyTransition(ctx, id, sc); err != nil {
		s.cfg.Log.Error("Failed to approve schedule", "id", id, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, eventApproved, sc)
	s.cfg.Log.Info("Schedule approved", "id", id, "approved_at", now)
	return sc, nil
}

// Disapprove reverts an approved schedule to completed and clears the
// approval timestamp, restoring the exact pre-approval state.
func (s *scheduleService) Disapprove(ctx context.Context, id string) (*model.Schedule, error) {
	sc, err := s.fetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sc.Status != model.StatusApproved {
		s.cfg.Log.Warn("Disapprove rejected", "id", id, "status", sc.Status)
		return nil, apperrors.InvalidTransition("Only approved schedules can be disapproved")
	}

	sc.Status = model.StatusCompleted
	sc.ApprovedAt = nil

	if err := s.applyTransition(ctx, id, sc); err != nil {
		s.cfg.Log.Error("Failed to disapprove schedule", "id", id, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, eventDisapproved, sc)
	s.cfg.Log.Info("Schedule disapproved", "id", id)
	return sc, nil
}

// applyTransition persists a status change. Transitions never move the
// schedule's (room, date) slot, so no conflict check is needed.
func (s *scheduleService) applyTransition(ctx context.Context, id string, sc *model.Schedule) error {
	if _, err := s.repo.Update(ctx, id, sc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("Room is already scheduled for this date")
		}
		return apperrors.Internal("Failed to update schedule status", err)
	}
	return nil
}
