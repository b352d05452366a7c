package service

import (
	"context"
	"testing"
	"time"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

func completedSchedule(id string) *model.Schedule {
	sc := validSchedule()
	sc.ID = id
	sc.Status = model.StatusCompleted
	return sc
}

func TestApprove_FromCompleted(t *testing.T) {
	events := &mockEventPublisher{}
	var persisted *model.Schedule
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return completedSchedule(id), nil
		},
		updateFunc: func(ctx context.Context, id string, sc *model.Schedule) (*mongo.UpdateResult, error) {
			persisted = sc
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo, events: events})

	before := time.Now().UTC()
	sc, err := svc.Approve(context.Background(), "665f1c9a2ab79c6f1d8e4b21")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sc.Status != model.StatusApproved {
		t.Errorf("expected status approved, got %s", sc.Status)
	}
	if sc.ApprovedAt == nil {
		t.Fatal("approval must set the timestamp")
	}
	if sc.ApprovedAt.Before(before.Truncate(time.Millisecond)) || sc.ApprovedAt.After(time.Now().UTC()) {
		t.Errorf("approval timestamp %v outside expected window", sc.ApprovedAt)
	}
	if persisted == nil || persisted.Status != model.StatusApproved {
		t.Error("approved state was not persisted")
	}
	if len(events.published) != 1 || events.published[0] != "schedule.approved" {
		t.Errorf("expected schedule.approved event, got %v", events.published)
	}
}

func TestApprove_WrongStartingStatus(t *testing.T) {
	for _, status := range []string{model.StatusPending, model.StatusCancelled, model.StatusApproved} {
		t.Run(status, func(t *testing.T) {
			repo := &mockScheduleRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
					sc := validSchedule()
					sc.ID = id
					sc.Status = status
					if status == model.StatusApproved {
						now := time.Now().UTC()
						sc.ApprovedAt = &now
					}
					return sc, nil
				},
			}
			svc := newTestService(serviceDeps{repo: repo})

			_, err := svc.Approve(context.Background(), "665f1c9a2ab79c6f1d8e4b21")
			if err == nil {
				t.Fatal("expected invalid transition error")
			}
			assertAppErrorCode(t, err, apperrors.CodeInvalidTransition, 409)
		})
	}
}

func TestApprove_UnknownID(t *testing.T) {
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return nil, notFoundSentinel()
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, err := svc.Approve(context.Background(), "665f1c9a2ab79c6f1d8e4b21")
	if err == nil {
		t.Fatal("expected not found error")
	}
	assertAppErrorCode(t, err, apperrors.CodeNotFound, 404)
}

func TestDisapprove_FromApproved(t *testing.T) {
	events := &mockEventPublisher{}
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			return approvedSchedule(id), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo, events: events})

	sc, err := svc.Disapprove(context.Background(), "665f1c9a2ab79c6f1d8e4b21")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sc.Status != model.StatusCompleted {
		t.Errorf("expected status completed, got %s", sc.Status)
	}
	if sc.ApprovedAt != nil {
		t.Error("disapproval must clear the approval timestamp")
	}
	if len(events.published) != 1 || events.published[0] != "schedule.disapproved" {
		t.Errorf("expected schedule.disapproved event, got %v", events.published)
	}
}

func TestDisapprove_WrongStartingStatus(t *testing.T) {
	for _, status := range []string{model.StatusPending, model.StatusCompleted, model.StatusCancelled} {
		t.Run(status, func(t *testing.T) {
			repo := &mockScheduleRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
					sc := validSchedule()
					sc.ID = id
					sc.Status = status
					return sc, nil
				},
			}
			svc := newTestService(serviceDeps{repo: repo})

			_, err := svc.Disapprove(context.Background(), "665f1c9a2ab79c6f1d8e4b21")
			if err == nil {
				t.Fatal("expected invalid transition error")
			}
			assertAppErrorCode(t, err, apperrors.CodeInvalidTransition, 409)
		})
	}
}

// Approve then disapprove lands back exactly where it started.
func TestWorkflow_RoundTrip(t *testing.T) {
	store := completedSchedule("665f1c9a2ab79c6f1d8e4b21")
	repo := &mockScheduleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Schedule, error) {
			copied := *store
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, sc *model.Schedule) (*mongo.UpdateResult, error) {
			store = sc
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	if _, err := svc.Approve(context.Background(), store.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if store.Status != model.StatusApproved || store.ApprovedAt == nil {
		t.Fatal("approve did not persist the approved state")
	}

	sc, err := svc.Disapprove(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("disapprove failed: %v", err)
	}
	if sc.Status != model.StatusCompleted || sc.ApprovedAt != nil {
		t.Error("round trip must restore the pre-approval state")
	}
}
