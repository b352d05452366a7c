package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"custodia/internal/schedules/service"
	apperrors "custodia/pkg/errors"
	httputil "custodia/pkg/http"
	"custodia/pkg/logger"
	"custodia/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ScheduleHandler struct {
	service  service.ScheduleService
	rooms    service.RoomDirectory
	cleaners service.CleanerRoster
	log      *logger.Logger
}

func NewScheduleHandler(
	svc service.ScheduleService,
	rooms service.RoomDirectory,
	cleaners service.CleanerRoster,
	log *logger.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		service:  svc,
		rooms:    rooms,
		cleaners: cleaners,
		log:      log,
	}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var sc model.Schedule
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &sc); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, sc); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ScheduleHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	sc, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := model.ScheduleFilter{
		CleanerID: query.Get("cleaner_id"),
		Status:    query.Get("status"),
		Search:    query.Get("q"),
	}

	views, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, views, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ScheduleUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	sc, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ScheduleHandler) Approve(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	sc, err := h.service.Approve(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Approve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Approve", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Disapprove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	sc, err := h.service.Disapprove(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Disapprove", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, sc); err != nil {
		h.log.Error("failed to write success response", "handler", "Disapprove", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) Report(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid year parameter: %s", query.Get("year")))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Report", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	month, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid month parameter: %s", query.Get("month")))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Report", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	report, err := h.service.Report(r.Context(), year, month)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Report", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "Report", "operation", "WriteSuccess", "error", err)
	}
}

// ListRooms proxies the room directory so the portal UI can populate its
// room picker without a second base URL.
func (h *ScheduleHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.log.Error("failed to list rooms", "handler", "ListRooms", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Unavailable("Room directory")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListRooms", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRooms", "operation", "WriteSuccess", "error", err)
	}
}

// ListCleaners proxies the staff roster, filtered to the cleaner role.
func (h *ScheduleHandler) ListCleaners(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cleaners, err := h.cleaners.ListCleaners(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.log.Error("failed to list cleaners", "handler", "ListCleaners", "error", err)
		if writeErr := httputil.WriteError(w, apperrors.Unavailable("Cleaner roster")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListCleaners", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, cleaners); err != nil {
		h.log.Error("failed to write success response", "handler", "ListCleaners", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/schedules", h.Create)
	router.GET("/api/v1/schedules", h.GetAll)
	router.GET("/api/v1/schedules/report", h.Report)
	router.GET("/api/v1/schedules/id/:id", h.GetByID)
	router.PATCH("/api/v1/schedules/id/:id", h.Update)
	router.DELETE("/api/v1/schedules/id/:id", h.Delete)
	router.PUT("/api/v1/schedules/id/:id/approve", h.Approve)
	router.PUT("/api/v1/schedules/id/:id/disapprove", h.Disapprove)
	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/cleaners", h.ListCleaners)
}
