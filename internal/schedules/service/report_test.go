package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
)

func monthFixture() []*model.Schedule {
	approvedAt1 := time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC)
	approvedAt2 := time.Date(2026, 9, 20, 17, 30, 0, 0, time.UTC)
	return []*model.Schedule{
		{ID: "b1", RoomID: "room-1", CleanerID: "cleaner-1", Date: "2026-09-01", Status: model.StatusPending},
		{ID: "b2", RoomID: "room-2", CleanerID: "cleaner-1", Date: "2026-09-05", Status: model.StatusApproved, ApprovedAt: &approvedAt1},
		{ID: "b3", RoomID: "room-1", CleanerID: "cleaner-2", Date: "2026-09-12", Status: model.StatusCancelled},
		{ID: "b4", RoomID: "room-2", CleanerID: "cleaner-2", Date: "2026-09-19", Status: model.StatusApproved, ApprovedAt: &approvedAt2},
		{ID: "b5", RoomID: "room-1", CleanerID: "cleaner-1", Date: "2026-09-26", Status: model.StatusCompleted},
	}
}

func TestReport_StatusCounts(t *testing.T) {
	repo := &mockScheduleRepository{
		findByMonthFunc: func(ctx context.Context, year int, month int) ([]*model.Schedule, error) {
			return monthFixture(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	report, err := svc.Report(context.Background(), 2026, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]int{
		model.StatusPending:   1,
		model.StatusCompleted: 1,
		model.StatusCancelled: 1,
		model.StatusApproved:  2,
	}

	if len(report.StatusCounts) != len(model.Statuses) {
		t.Fatalf("expected %d status rows, got %d", len(model.Statuses), len(report.StatusCounts))
	}

	sum := 0
	for i, row := range report.StatusCounts {
		if row.Status != model.Statuses[i] {
			t.Errorf("expected fixed enum order, row %d is %s", i, row.Status)
		}
		if row.Count != expected[row.Status] {
			t.Errorf("status %s: expected %d, got %d", row.Status, expected[row.Status], row.Count)
		}
		sum += row.Count
	}
	if sum != len(monthFixture()) {
		t.Errorf("counts must sum to the month's total, got %d", sum)
	}
}

func TestReport_EmptyMonthHasZeroRows(t *testing.T) {
	svc := newTestService(serviceDeps{})

	report, err := svc.Report(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.StatusCounts) != len(model.Statuses) {
		t.Fatalf("zero counts must still be listed, got %d rows", len(report.StatusCounts))
	}
	for _, row := range report.StatusCounts {
		if row.Count != 0 {
			t.Errorf("expected zero count for %s, got %d", row.Status, row.Count)
		}
	}
	if len(report.ApprovedEntries) != 0 {
		t.Errorf("expected no approved entries, got %d", len(report.ApprovedEntries))
	}
}

func TestReport_ApprovedEntries(t *testing.T) {
	repo := &mockScheduleRepository{
		findByMonthFunc: func(ctx context.Context, year int, month int) ([]*model.Schedule, error) {
			return monthFixture(), nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	report, err := svc.Report(context.Background(), 2026, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.ApprovedEntries) != 2 {
		t.Fatalf("expected 2 approved entries, got %d", len(report.ApprovedEntries))
	}

	// Repository order (ascending id) carries through
	first := report.ApprovedEntries[0]
	if first.RoomName != "Lecture Hall A" {
		t.Errorf("expected resolved room name, got %q", first.RoomName)
	}
	if first.CleanerName != "Dana Levi" {
		t.Errorf("expected resolved cleaner name, got %q", first.CleanerName)
	}
	if !first.ApprovedAt.Equal(time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected approval time %v", first.ApprovedAt)
	}

	second := report.ApprovedEntries[1]
	if second.CleanerName != "Omar Haddad" {
		t.Errorf("expected resolved cleaner name, got %q", second.CleanerName)
	}
}

func TestReport_UnknownDirectoryIDsFallBackToRawID(t *testing.T) {
	approvedAt := time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC)
	repo := &mockScheduleRepository{
		findByMonthFunc: func(ctx context.Context, year int, month int) ([]*model.Schedule, error) {
			return []*model.Schedule{
				{ID: "b1", RoomID: "room-gone", CleanerID: "cleaner-gone", Date: "2026-09-05", Status: model.StatusApproved, ApprovedAt: &approvedAt},
			}, nil
		},
	}
	svc := newTestService(serviceDeps{repo: repo})

	report, err := svc.Report(context.Background(), 2026, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := report.ApprovedEntries[0]
	if entry.RoomName != "room-gone" || entry.CleanerName != "cleaner-gone" {
		t.Errorf("expected raw id fallback, got %q / %q", entry.RoomName, entry.CleanerName)
	}
}

func TestReport_InvalidPeriod(t *testing.T) {
	svc := newTestService(serviceDeps{})

	tests := []struct {
		name  string
		year  int
		month int
	}{
		{"month zero", 2026, 0},
		{"month thirteen", 2026, 13},
		{"negative month", 2026, -1},
		{"year too small", 1800, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Report(context.Background(), tt.year, tt.month)
			if err == nil {
				t.Fatal("expected error")
			}
			assertAppErrorCode(t, err, apperrors.CodeInvalidInput, 400)
		})
	}
}

func TestReport_DirectoryOutageFailsWithApprovals(t *testing.T) {
	approvedAt := time.Date(2026, 9, 10, 16, 0, 0, 0, time.UTC)
	repo := &mockScheduleRepository{
		findByMonthFunc: func(ctx context.Context, year int, month int) ([]*model.Schedule, error) {
			return []*model.Schedule{
				{ID: "b1", RoomID: "room-1", CleanerID: "cleaner-1", Date: "2026-09-05", Status: model.StatusApproved, ApprovedAt: &approvedAt},
			}, nil
		},
	}
	rooms := &mockRoomDirectory{
		listRoomsFunc: func(ctx context.Context) ([]model.Room, error) {
			return nil, errors.New("directory unreachable")
		},
	}
	svc := newTestService(serviceDeps{repo: repo, rooms: rooms})

	_, err := svc.Report(context.Background(), 2026, 9)
	if err == nil {
		t.Fatal("expected error when approved entries cannot be named")
	}
	assertAppErrorCode(t, err, apperrors.CodeInternal, 500)

	// Months without approvals never touch the directories
	repoEmpty := &mockScheduleRepository{
		findByMonthFunc: func(ctx context.Context, year int, month int) ([]*model.Schedule, error) {
			return []*model.Schedule{
				{ID: "b1", RoomID: "room-1", CleanerID: "cleaner-1", Date: "2026-09-05", Status: model.StatusPending},
			}, nil
		},
	}
	svcEmpty := newTestService(serviceDeps{repo: repoEmpty, rooms: rooms})
	if _, err := svcEmpty.Report(context.Background(), 2026, 9); err != nil {
		t.Fatalf("report without approvals must not need the directory: %v", err)
	}
}
