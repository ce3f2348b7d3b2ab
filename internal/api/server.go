// Package api exposes the booking engine over HTTP/JSON.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/JayBeez180/booking-system/internal/booking"
)

// Server holds the HTTP handlers around the booking service.
type Server struct {
	svc    *booking.Service
	logger *zerolog.Logger
}

// NewServer creates the HTTP layer over a booking service.
func NewServer(svc *booking.Service, logger *zerolog.Logger) *Server {
	return &Server{svc: svc, logger: logger}
}

// Router builds the full route table. rateLimit may be nil to disable
// per-client throttling.
func (s *Server) Router(rateLimit *ClientLimiter) http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)
	if rateLimit != nil {
		r.Use(rateLimit.Middleware)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/services", s.handleListServices).Methods(http.MethodGet)
	api.HandleFunc("/slots", s.handleSlots).Methods(http.MethodGet)

	api.HandleFunc("/bookings", s.handleCreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings", s.handleListBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/import", s.handleImportBookings).Methods(http.MethodPost)
	api.HandleFunc("/bookings/export", s.handleExportBookings).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", s.handleGetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}/move", s.handleMoveBooking).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}/extend", s.handleExtendBooking).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", s.handleCancelBooking).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}/no-show", s.handleMarkNoShow).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}/undo-no-show", s.handleUndoNoShow).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{id:[0-9]+}/complete", s.handleMarkCompleted).Methods(http.MethodPatch)

	api.HandleFunc("/availability", s.handleListWindows).Methods(http.MethodGet)
	api.HandleFunc("/availability", s.handleAddWindow).Methods(http.MethodPost)
	api.HandleFunc("/availability/{id:[0-9]+}", s.handleDeactivateWindow).Methods(http.MethodDelete)

	api.HandleFunc("/blocks", s.handleListBlocks).Methods(http.MethodGet)
	api.HandleFunc("/blocks", s.handleAddBlock).Methods(http.MethodPost)
	api.HandleFunc("/blocks/range", s.handleAddBlockRange).Methods(http.MethodPost)
	api.HandleFunc("/blocks/quick", s.handleQuickAddBlock).Methods(http.MethodPost)
	api.HandleFunc("/blocks/{id:[0-9]+}", s.handleDeleteBlock).Methods(http.MethodDelete)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
