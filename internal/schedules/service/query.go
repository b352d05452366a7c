package service

import (
	"context"
	"strings"
	"sync"

	apperrors "custodia/pkg/errors"
	"custodia/pkg/model"
	"custodia/pkg/sanitizer"
)

// Free-text search matches against directory names the database never
// sees, so it cannot be paginated by Mongo. Scans are capped instead.
const searchScanLimit = 1000

func (s *scheduleService) GetAll(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.ScheduleView, int64, error) {
	filter.CleanerID = sanitizer.NormalizeID(filter.CleanerID)
	filter.Status = sanitizer.NormalizeID(filter.Status)
	filter.Search = sanitizer.NormalizeSearchTerm(filter.Search)

	if filter.Status != "" && !model.IsValidStatus(filter.Status) {
		return nil, 0, apperrors.Validation("Unknown status filter", map[string]any{
			"status": filter.Status,
		})
	}

	if filter.Search == "" {
		return s.listFiltered(ctx, filter, limit, offset)
	}
	return s.listSearched(ctx, filter, limit, offset)
}

// listFiltered pushes the structured filters down to Mongo and paginates
// there, counting and fetching in parallel.
func (s *scheduleService) listFiltered(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.ScheduleView, int64, error) {
	var count int64
	var schedules []*model.Schedule
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count schedules", "error", errCount)
			errCount = apperrors.Internal("Failed to count schedules", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		schedules, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list schedules", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve schedules", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	views := s.enrich(ctx, schedules)
	return views, count, nil
}

// listSearched applies the structured filters in Mongo, then the free-text
// match in memory after directory enrichment. Pagination happens over the
// matched set so offsets stay meaningful.
func (s *scheduleService) listSearched(ctx context.Context, filter model.ScheduleFilter, limit int, offset int) ([]*model.ScheduleView, int64, error) {
	schedules, err := s.repo.FindAll(ctx, filter, searchScanLimit, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list schedules for search", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve schedules", err)
	}

	rooms, cleaners, err := s.loadDirectories(ctx)
	if err != nil {
		// Search matches on directory names; without them results would be
		// silently wrong, so the request fails instead of degrading.
		s.cfg.Log.Error("Failed to load directories for search", "error", err)
		return nil, 0, apperrors.Internal("Failed to search schedules", err)
	}

	var matched []*model.ScheduleView
	for _, sc := range schedules {
		view := buildView(sc, rooms, cleaners)
		if matchesSearch(view, filter.Search) {
			matched = append(matched, view)
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*model.ScheduleView{}, total, nil
	}
	end := min(offset+limit, len(matched))

	s.cfg.Log.Debug("Schedule search completed",
		"search", filter.Search,
		"scanned", len(schedules),
		"matched", total,
	)
	return matched[offset:end], total, nil
}

// enrich decorates schedules with their room and cleaner. Directory outages
// degrade plain listings to bare schedules rather than failing the request.
func (s *scheduleService) enrich(ctx context.Context, schedules []*model.Schedule) []*model.ScheduleView {
	rooms, cleaners, err := s.loadDirectories(ctx)
	if err != nil {
		s.cfg.Log.Warn("Failed to load directories, returning bare schedules", "error", err)
		rooms, cleaners = map[string]model.Room{}, map[string]model.Cleaner{}
	}

	views := make([]*model.ScheduleView, 0, len(schedules))
	for _, sc := range schedules {
		views = append(views, buildView(sc, rooms, cleaners))
	}
	return views
}

func (s *scheduleService) loadDirectories(ctx context.Context) (map[string]model.Room, map[string]model.Cleaner, error) {
	var rooms []model.Room
	var cleaners []model.Cleaner
	var errRooms, errCleaners error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rooms, errRooms = s.rooms.ListRooms(ctx)
	}()

	go func() {
		defer wg.Done()
		cleaners, errCleaners = s.cleaners.ListCleaners(ctx, s.cfg.CleanerRole)
	}()

	wg.Wait()
	if errRooms != nil {
		return nil, nil, errRooms
	}
	if errCleaners != nil {
		return nil, nil, errCleaners
	}

	roomsByID := make(map[string]model.Room, len(rooms))
	for _, room := range rooms {
		roomsByID[room.ID] = room
	}
	cleanersByID := make(map[string]model.Cleaner, len(cleaners))
	for _, cleaner := range cleaners {
		cleanersByID[cleaner.ID] = cleaner
	}

	return roomsByID, cleanersByID, nil
}

func buildView(sc *model.Schedule, rooms map[string]model.Room, cleaners map[string]model.Cleaner) *model.ScheduleView {
	view := &model.ScheduleView{Schedule: *sc}
	if room, ok := rooms[sc.RoomID]; ok {
		view.Room = &room
	}
	if cleaner, ok := cleaners[sc.CleanerID]; ok {
		view.Cleaner = &cleaner
	}
	return view
}

// matchesSearch reports whether the lowercased term appears in the room
// name, the cleaner full name, or the raw date string.
func matchesSearch(view *model.ScheduleView, term string) bool {
	if view.Room != nil && strings.Contains(strings.ToLower(view.Room.Name), term) {
		return true
	}
	if view.Cleaner != nil && strings.Contains(strings.ToLower(view.Cleaner.FullName()), term) {
		return true
	}
	return strings.Contains(view.Date, term)
}
