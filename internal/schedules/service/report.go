package service

import (
	"context"
	"fmt"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
)

const (
	reportMinYear = 1970
	reportMaxYear = 9999
)

// Report aggregates one calendar month: a count per status (zeros
// included, fixed enum order) plus one entry per approved schedule. The
// counts always sum to the month's record total.
func (s *scheduleService) Report(ctx context.Context, year int, month int) (*model.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("month must be between 1 and 12, got: %d", month))
	}
	if year < reportMinYear || year > reportMaxYear {
		return nil, apperrors.InvalidInput(fmt.Sprintf("year must be between %d and %d, got: %d", reportMinYear, reportMaxYear, year))
	}

	schedules, err := s.repo.FindByMonth(ctx, year, month)
	if err != nil {
		s.cfg.Log.Error("Failed to load schedules for report", "year", year, "month", month, "error", err)
		return nil, apperrors.Internal("Failed to build monthly report", err)
	}

	counts := make(map[string]int, len(model.Statuses))
	var approved []*model.Schedule
	for _, sc := range schedules {
		counts[sc.Status]++
		if sc.ApprovedAt != nil {
			approved = append(approved, sc)
		}
	}

	report := &model.MonthlyReport{
		Year:            year,
		Month:           month,
		StatusCounts:    make([]model.StatusCount, 0, len(model.Statuses)),
		ApprovedEntries: []model.ApprovedEntry{},
	}
	for _, status := range model.Statuses {
		report.StatusCounts = append(report.StatusCounts, model.StatusCount{
			Status: status,
			Count:  counts[status],
		})
	}

	if len(approved) > 0 {
		entries, err := s.buildApprovedEntries(ctx, approved)
		if err != nil {
			return nil, err
		}
		report.ApprovedEntries = entries
	}

	s.cfg.Log.Debug("Monthly report built",
		"year", year,
		"month", month,
		"total", len(schedules),
		"approved", len(approved),
	)
	return report, nil
}

// buildApprovedEntries resolves directory names for the approved listing.
// Ids the directories no longer know fall back to the raw id so the row
// stays identifiable.
func (s *scheduleService) buildApprovedEntries(ctx context.Context, approved []*model.Schedule) ([]model.ApprovedEntry, error) {
	rooms, cleaners, err := s.loadDirectories(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load directories for report", "error", err)
		return nil, apperrors.Internal("Failed to build monthly report", err)
	}

	entries := make([]model.ApprovedEntry, 0, len(approved))
	for _, sc := range approved {
		entry := model.ApprovedEntry{
			CleanerName: sc.CleanerID,
			RoomName:    sc.RoomID,
			ApprovedAt:  *sc.ApprovedAt,
		}
		if room, ok := rooms[sc.RoomID]; ok {
			entry.RoomName = room.Name
		}
		if cleaner, ok := cleaners[sc.CleanerID]; ok {
			entry.CleanerName = cleaner.FullName()
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
