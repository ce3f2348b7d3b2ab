package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/JayBeez180/booking-system/internal/booking"
	"github.com/JayBeez180/booking-system/internal/database"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// conflictResponse carries the validator's verdict on a 409.
type conflictResponse struct {
	booking.Result
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func respondConflict(w http.ResponseWriter, res booking.Result) {
	respondJSON(w, http.StatusConflict, conflictResponse{Result: res, Message: res.Message()})
}

// respondServiceError maps core errors to HTTP statuses: missing rows to 404,
// bad input to 400, forbidden transitions and duration bounds to 422,
// everything else to 500.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var formatErr *timeslot.FormatError
	var dateErr *time.ParseError
	var durErr *booking.DurationOutOfRangeError
	var transErr *booking.TransitionError

	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.As(err, &formatErr), errors.As(err, &dateErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &durErr), errors.As(err, &transErr):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
