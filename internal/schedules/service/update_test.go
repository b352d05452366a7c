package service

import (
	"context"
	"testing"
	"time"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func approvedSchedule(id string) *model.Schedule {
	approvedAt := time.Date(2026, 9, 16, 14, 30, 0, 0, time.UTC)
	return &model.Schedule{
		ID:         id,
		RoomID:     "room-1",
		CleanerID:  "cleaner-1",
		Date:       "2026-09-15",
		StartTime:  "08:00",
		EndTime:    "10:30",
		Status:     model.StatusApproved,
		ApprovedAt: &approvedAt,
	}
}

func TestUpdate_MergesPartialFields(t *testing.T) {
	var persisted *model.Schedule
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = id
			return sc, nil
		},
		updateFunc: func(ctx context.Context, id string, sc *model.Schedule) (*mongo.UpdateResult, error) {
			persisted = sc
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	updated, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{
		EndTime: "12:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.EndTime != "12:00" {
		t.Errorf("expected end_time 12:00, got %s", updated.EndTime)
	}
	if updated.RoomID != "room-1" || updated.Date != "2026-09-15" {
		t.Error("untouched fields must survive a partial update")
	}
	if persisted == nil || persisted.EndTime != "12:00" {
		t.Error("merged schedule was not persisted")
	}
}

func TestUpdate_RejectsApprovedStatus(t *testing.T) {
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = id
			sc.Status = model.StatusCompleted
			return sc, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{
		Status: model.StatusApproved,
	})
	if err == nil {
		t.Fatal("expected error when setting approved through a generic edit")
	}
	assertAppErrorCode(t, err, apperrors.CodeValidation, 422)
}

func TestUpdate_DemotionClearsApprovedAt(t *testing.T) {
	for _, target := range []string{model.StatusPending, model.StatusCompleted, model.StatusCancelled} {
		t.Run(target, func(t *testing.T) {
			var persisted *model.Schedule
			repo := &mockScheduleRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
					return approvedSchedule(id), nil
				},
				updateFunc: func(ctx context.Context, id string, sc *model.Schedule) (*mongo.UpdateResult, error) {
					persisted = sc
					return &mongo.UpdateResult{MatchedCount: 1}, nil
				},
			}
			svc := newTestService(serviceDeps{repo: repo})

			updated, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{
				Status: target,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if updated.Status != target {
				t.Errorf("expected status %s, got %s", target, updated.Status)
			}
			if updated.ApprovedAt != nil {
				t.Error("leaving approved must clear the approval timestamp")
			}
			if persisted.ApprovedAt != nil {
				t.Error("cleared timestamp must be persisted")
			}
		})
	}
}

func TestUpdate_KeepsApprovedAtWhenStatusUntouched(t *testing.T) {
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return approvedSchedule(id), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	updated, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{
		EndTime: "11:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Status != model.StatusApproved {
		t.Errorf("expected status to stay approved, got %s", updated.Status)
	}
	if updated.ApprovedAt == nil {
		t.Error("approval timestamp must survive edits that keep the status approved")
	}
}

func TestUpdate_MoveToOccupiedSlotConflicts(t *testing.T) {
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = id
			return sc, nil
		},
		findByRoomAndDateFunc: func(ctx context.Context, roomID string, date string) ([]*model.Schedule, error) {
			return []*model.Schedule{
				{ID: "other", RoomID: roomID, Date: date, Status: model.StatusPending},
			}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{
		Date: "2026-09-20",
	})
	if err == nil {
		t.Fatal("expected conflict when moving onto an occupied slot")
	}
	assertAppErrorCode(t, err, apperrors.CodeConflict, 409)
}

func TestUpdate_OwnRecordDoesNotConflict(t *testing.T) {
	const id = "665f1c9a2ab79c6f1d8e4b21"
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, findID string) (*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = findID
			return sc, nil
		},
		findByRoomAndDateFunc: func(ctx context.Context, roomID string, date string) ([]*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = id
			return []*model.Schedule{sc}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	// Editing without moving the slot sees its own row in the scan
	if _, err := svc.Update(context.Background(), id, &model.ScheduleUpdate{EndTime: "12:00"}); err != nil {
		t.Fatalf("a schedule must not conflict with itself: %v", err)
	}
}

func TestUpdate_SlotChangeAcquiresLock(t *testing.T) {
	lockRepo := &mockScheduleLockRepository{}
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			sc := validSchedule()
			sc.ID = id
			return sc, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo, lockRepo: lockRepo})

	if _, err := svc.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{Date: "2026-09-20"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lockRepo.created) != 1 {
		t.Errorf("expected lock on the target slot, got %d locks", len(lockRepo.created))
	}

	// Same-slot edits skip the lock
	lockRepo2 := &mockScheduleLockRepository{}
	svc2 := newTestService(serviceDeps{repo: repo, lockRepo: lockRepo2})
	if _, err := svc2.Update(context.Background(), "665f1c9a2ab79c6f1d8e4b21", &model.ScheduleUpdate{EndTime: "12:00"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lockRepo2.created) != 0 {
		t.Errorf("same-slot edit must not lock, got %d locks", len(lockRepo2.created))
	}
}
