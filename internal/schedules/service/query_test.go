package service

import (
	"context"
	"errors"
	"testing"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
)

func fixtureSchedules() []*model.Schedule {
	return []*model.Schedule{
		{ID: "a1", RoomID: "room-1", CleanerID: "cleaner-1", Date: "2026-09-15", StartTime: "08:00", EndTime: "10:00", Status: model.StatusPending},
		{ID: "a2", RoomID: "room-2", CleanerID: "cleaner-2", Date: "2026-09-16", StartTime: "09:00", EndTime: "11:00", Status: model.StatusCompleted},
		{ID: "a3", RoomID: "room-1", CleanerID: "cleaner-2", Date: "2026-10-01", StartTime: "07:00", EndTime: "09:00", Status: model.StatusPending},
	}
}

func TestGetAll_PushesFiltersToRepository(t *testing.T) {
	var seenFilter model.ScheduleFilter
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			seenFilter = filter
			return fixtureSchedules()[:1], nil
		},
		countFunc: func(ctx context.Context, filter model.ScheduleFilter) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{
		CleanerID: " cleaner-1 ",
		Status:    "pending",
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if seenFilter.CleanerID != "cleaner-1" {
		t.Errorf("cleaner filter not normalized and forwarded, got %q", seenFilter.CleanerID)
	}
	if seenFilter.Status != "pending" {
		t.Errorf("status filter not forwarded, got %q", seenFilter.Status)
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
}

func TestGetAll_UnknownStatusFilter(t *testing.T) {
	svc := newTestService(serviceDeps{})

	_, _, err := svc.GetAll(context.Background(), model.ScheduleFilter{Status: "done"}, 10, 0)
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
	assertAppErrorCode(t, err, apperrors.CodeValidation, 422)
}

func TestGetAll_EnrichesWithDirectoryData(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules()[:2], nil
		},
		countFunc: func(ctx context.Context, filter model.ScheduleFilter) (int64, error) {
			return 2, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	views, _, err := svc.GetAll(context.Background(), model.ScheduleFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}

	if views[0].Room == nil || views[0].Room.Name != "Chemistry Lab" {
		t.Error("expected room enrichment from the directory")
	}
	if views[0].Cleaner == nil || views[0].Cleaner.FullName() != "Dana Levi" {
		t.Error("expected cleaner enrichment from the roster")
	}
}

func TestGetAll_DirectoryOutageDegradesGracefully(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules()[:1], nil
		},
		countFunc: func(ctx context.Context, filter model.ScheduleFilter) (int64, error) {
			return 1, nil
		},
	}
	rooms := &mockRoomDirectory{
		listRoomsFunc: func(ctx context.Context) ([]model.Room, error) {
			return nil, errors.New("directory unreachable")
		},
	}
	svc := newTestService(serviceDeps{repo: repo, rooms: rooms})

	views, _, err := svc.GetAll(context.Background(), model.ScheduleFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("plain listings must not fail on directory outage: %v", err)
	}
	if views[0].Room != nil {
		t.Error("expected bare schedule when the directory is down")
	}
}

func TestGetAll_SearchMatchesRoomName(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	// Case-insensitive substring over the room name
	views, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "CHEMISTRY"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 matches for room-1 schedules, got %d", total)
	}
	for _, view := range views {
		if view.RoomID != "room-1" {
			t.Errorf("unexpected match %s", view.ID)
		}
	}
}

func TestGetAll_SearchMatchesCleanerName(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "omar had"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("expected 2 matches for Omar Haddad, got %d", total)
	}
}

func TestGetAll_SearchMatchesDateString(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "2026-10"}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 match for October, got %d", total)
	}
}

func TestGetAll_SearchCombinesWithStructuredFilters(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			// Structured filters run in the repository even on the search path
			var out []*model.Schedule
			for _, sc := range fixtureSchedules() {
				if filter.CleanerID != "" && sc.CleanerID != filter.CleanerID {
					continue
				}
				out = append(out, sc)
			}
			return out, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	_, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{
		CleanerID: "cleaner-2",
		Search:    "chemistry",
	}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only a3 is both cleaner-2 and in room-1
	if total != 1 {
		t.Errorf("expected 1 match from ANDed filters, got %d", total)
	}
}

func TestGetAll_SearchNoMatches(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	views, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "no such thing"}, 10, 0)
	if err != nil {
		t.Fatalf("an empty result is not an error: %v", err)
	}
	if total != 0 || len(views) != 0 {
		t.Errorf("expected empty result, got %d/%d", total, len(views))
	}
}

func TestGetAll_SearchFailsOnDirectoryOutage(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	cleaners := &mockCleanerRoster{
		listCleanersFunc: func(ctx context.Context, role string) ([]model.Cleaner, error) {
			return nil, errors.New("roster unreachable")
		},
	}
	svc := newTestService(serviceDeps{repo: repo, cleaners: cleaners})

	_, _, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "dana"}, 10, 0)
	if err == nil {
		t.Fatal("search without directory data would be silently wrong, expected error")
	}
	assertAppErrorCode(t, err, apperrors.CodeInternal, 500)
}

func TestGetAll_SearchPagination(t *testing.T) {
	repo := &mockScheduleRepository{
		findAllFunc: func(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.Schedule, error) {
			return fixtureSchedules(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	views, total, err := svc.GetAll(context.Background(), model.ScheduleFilter{Search: "2026"}, 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3 before pagination, got %d", total)
	}
	if len(views) != 1 {
		t.Errorf("expected 1 view on the last page, got %d", len(views))
	}
}
