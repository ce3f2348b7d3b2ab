package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/slots"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// GET /api/v1/services
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListServices(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Service{}
	}
	respondJSON(w, http.StatusOK, list)
}

// GET /api/v1/slots?date=YYYY-MM-DD&service_id=N
// GET /api/v1/slots?date=YYYY-MM-DD&duration=N
func (s *Server) handleSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, use YYYY-MM-DD")
		return
	}

	var duration int
	switch {
	case q.Get("service_id") != "":
		id, err := strconv.ParseInt(q.Get("service_id"), 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid service_id")
			return
		}
		svc, err := s.svc.GetService(r.Context(), id)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		duration = svc.DurationMinutes
	case q.Get("duration") != "":
		var err error
		duration, err = strconv.Atoi(q.Get("duration"))
		if err != nil || duration <= 0 {
			respondError(w, http.StatusBadRequest, "invalid duration")
			return
		}
	default:
		respondError(w, http.StatusBadRequest, "service_id or duration query parameter is required")
		return
	}

	list, err := s.svc.GenerateSlots(r.Context(), date, duration)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []slots.Slot{}
	}
	respondJSON(w, http.StatusOK, list)
}

// GET /api/v1/availability
func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListAvailabilityWindows(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.AvailabilityWindow{}
	}
	respondJSON(w, http.StatusOK, list)
}

type windowRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// POST /api/v1/availability
func (s *Server) handleAddWindow(w http.ResponseWriter, r *http.Request) {
	var req windowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	startMin, err := timeslot.ToMinutes(req.Start)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	endMin, err := timeslot.ToMinutes(req.End)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	win, err := s.svc.AddAvailabilityWindow(r.Context(), models.AvailabilityWindow{
		DayOfWeek:    req.DayOfWeek,
		StartMinutes: startMin,
		EndMinutes:   endMin,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, win)
}

// DELETE /api/v1/availability/{id}
func (s *Server) handleDeactivateWindow(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid window id")
		return
	}
	if err := s.svc.DeactivateAvailabilityWindow(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/blocks
func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.ListBlocks(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.BlockedTime{}
	}
	respondJSON(w, http.StatusOK, list)
}

type blockRequest struct {
	Date               string `json:"date"`
	Start              string `json:"start"`
	End                string `json:"end"`
	Reason             string `json:"reason"`
	AllDay             bool   `json:"all_day"`
	RecurringWeekly    bool   `json:"recurring_weekly"`
	RecurringDayOfWeek int    `json:"recurring_day_of_week"`
}

// POST /api/v1/blocks
func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	block := models.BlockedTime{
		Date:               req.Date,
		Reason:             req.Reason,
		AllDay:             req.AllDay,
		RecurringWeekly:    req.RecurringWeekly,
		RecurringDayOfWeek: req.RecurringDayOfWeek,
	}
	if req.RecurringWeekly {
		if req.RecurringDayOfWeek < 0 || req.RecurringDayOfWeek > 6 {
			respondError(w, http.StatusBadRequest, "recurring_day_of_week out of range")
			return
		}
	} else if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, use YYYY-MM-DD")
		return
	}
	if !req.AllDay {
		startMin, err := timeslot.ToMinutes(req.Start)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		endMin, err := timeslot.ToMinutes(req.End)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if startMin >= endMin {
			respondError(w, http.StatusBadRequest, "block start must precede end")
			return
		}
		block.StartMinutes = startMin
		block.EndMinutes = endMin
	}

	created, err := s.svc.AddBlock(r.Context(), block)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

type blockRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// POST /api/v1/blocks/range
func (s *Server) handleAddBlockRange(w http.ResponseWriter, r *http.Request) {
	var req blockRangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.svc.AddBlockRange(r.Context(), req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rows)
}

type quickBlockRequest struct {
	Date     string `json:"date"`
	Start    string `json:"start"`
	Duration string `json:"duration"`
	Reason   string `json:"reason"`
}

// POST /api/v1/blocks/quick
func (s *Server) handleQuickAddBlock(w http.ResponseWriter, r *http.Request) {
	var req quickBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Every QuickAddBlock failure is a bad form field.
	block, err := s.svc.QuickAddBlock(r.Context(), req.Date, req.Start, req.Duration, req.Reason)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, block)
}

// DELETE /api/v1/blocks/{id}
func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid block id")
		return
	}
	if err := s.svc.DeleteBlock(r.Context(), id); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
