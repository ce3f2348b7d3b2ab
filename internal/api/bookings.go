package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JayBeez180/booking-system/internal/booking"
	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/report"
)

// POST /api/v1/bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		respondError(w, http.StatusBadRequest, "customer name and email are required")
		return
	}

	b, res, err := s.svc.CreateBooking(r.Context(), req)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !res.OK {
		respondConflict(w, res)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

// GET /api/v1/bookings?date=YYYY-MM-DD
// GET /api/v1/bookings?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		list []models.Booking
		err  error
	)
	switch {
	case q.Get("date") != "":
		list, err = s.svc.ListBookings(r.Context(), q.Get("date"))
	case q.Get("from") != "" && q.Get("to") != "":
		list, err = s.svc.BookingsInRange(r.Context(), q.Get("from"), q.Get("to"))
	default:
		respondError(w, http.StatusBadRequest, "date or from/to query parameters are required")
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	respondJSON(w, http.StatusOK, list)
}

// GET /api/v1/bookings/{id}
func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := s.svc.GetBooking(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type moveRequest struct {
	Date  string `json:"date"`
	Start string `json:"start"`
}

// PATCH /api/v1/bookings/{id}/move
func (s *Server) handleMoveBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, res, err := s.svc.MoveBooking(r.Context(), id, req.Date, req.Start)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !res.OK {
		respondConflict(w, res)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type extendRequest struct {
	DeltaMinutes int `json:"delta_minutes"`
}

// PATCH /api/v1/bookings/{id}/extend
func (s *Server) handleExtendBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req extendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.DeltaMinutes == 0 {
		respondError(w, http.StatusBadRequest, "delta_minutes must be non-zero")
		return
	}

	b, res, err := s.svc.ExtendBooking(r.Context(), id, req.DeltaMinutes)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if !res.OK {
		respondConflict(w, res)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.CancelBooking)
}

func (s *Server) handleMarkNoShow(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.MarkNoShow)
}

func (s *Server) handleUndoNoShow(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.UndoNoShow)
}

func (s *Server) handleMarkCompleted(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.MarkCompleted)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, id int64) (*models.Booking, error)) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	b, err := fn(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

type importRequest struct {
	Rows []booking.ImportRow `json:"rows"`
}

// POST /api/v1/bookings/import
func (s *Server) handleImportBookings(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Rows) == 0 {
		respondError(w, http.StatusBadRequest, "rows must not be empty")
		return
	}

	result, err := s.svc.ImportBookings(r.Context(), req.Rows)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GET /api/v1/bookings/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		respondError(w, http.StatusBadRequest, "from and to query parameters are required")
		return
	}

	list, err := s.svc.BookingsInRange(r.Context(), from, to)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=bookings_%s_%s_%s.xlsx", from, to, time.Now().Format("20060102")))
	if err := report.WriteBookings(w, list); err != nil {
		s.logger.Error().Err(err).Msg("write bookings export")
	}
}
