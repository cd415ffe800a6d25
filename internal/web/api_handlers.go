package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/planner"
	"github.com/evcraddock/visit-planner/internal/schedule"
	"github.com/evcraddock/visit-planner/internal/visit"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	apiJSON(w, map[string]string{"error": msg}, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"encode failed"}`, http.StatusInternalServerError)
	}
}

// CapacityErrorResponse is the body of a 422 reply.
type CapacityErrorResponse struct {
	Error    string            `json:"error"`
	Date     string            `json:"date"`
	Decision schedule.Decision `json:"decision"`
}

// RelocationErrorResponse is the body of a 409 reply to closing a day.
type RelocationErrorResponse struct {
	Error    string `json:"error"`
	VisitID  string `json:"visit_id"`
	Duration int    `json:"duration"`
	From     string `json:"from"`
	Scanned  int    `json:"scanned"`
}

// apiFail maps a planner error to a status code. action describes the
// failed operation for unexpected errors.
func (s *Server) apiFail(w http.ResponseWriter, err error, action string) {
	var capErr *planner.CapacityError
	var relocErr *schedule.CannotRelocateError
	switch {
	case errors.As(err, &capErr):
		apiJSON(w, CapacityErrorResponse{
			Error:    capErr.Error(),
			Date:     capErr.Date,
			Decision: capErr.Decision,
		}, http.StatusUnprocessableEntity)
	case errors.As(err, &relocErr):
		apiJSON(w, RelocationErrorResponse{
			Error:    relocErr.Error(),
			VisitID:  relocErr.VisitID,
			Duration: relocErr.Duration,
			From:     relocErr.From,
			Scanned:  relocErr.Scanned,
		}, http.StatusConflict)
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, cep.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, planner.ErrInvalidInput), errors.Is(err, cep.ErrInvalid):
		apiError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, visit.ErrInvalidTransition):
		apiError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, planner.ErrLookupUnavailable):
		apiError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		s.log.Error().Err(err).Str("action", action).Msg("request failed")
		apiError(w, fmt.Sprintf("%s: %v", action, err), http.StatusInternalServerError)
	}
}

// apiListVisits returns all visits, or one day's with ?date=.
func (s *Server) apiListVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := s.planner.List(r.URL.Query().Get("date"))
	if err != nil {
		s.apiFail(w, err, "listing visits")
		return
	}
	if visits == nil {
		visits = make([]visit.Visit, 0)
	}
	apiJSON(w, visits, http.StatusOK)
}

// apiAddVisit creates a visit if it fits on its day.
func (s *Server) apiAddVisit(w http.ResponseWriter, r *http.Request) {
	var in visit.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if in.Date == "" {
		apiError(w, "date is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	v, err := s.planner.Add(r.Context(), in)
	if err != nil {
		s.apiFail(w, err, "adding visit")
		return
	}
	apiJSON(w, v, http.StatusCreated)
}

// apiReplaceVisits replaces the whole collection with the posted array.
func (s *Server) apiReplaceVisits(w http.ResponseWriter, r *http.Request) {
	var visits []visit.Visit
	if err := json.NewDecoder(r.Body).Decode(&visits); err != nil {
		apiError(w, "expected a JSON array of visits", http.StatusBadRequest)
		return
	}
	if visits == nil {
		apiError(w, "expected a JSON array of visits", http.StatusBadRequest)
		return
	}

	if err := s.planner.ReplaceAll(r.Context(), visits); err != nil {
		s.apiFail(w, err, "importing visits")
		return
	}
	apiJSON(w, map[string]any{"imported": len(visits)}, http.StatusOK)
}

// apiGetVisit returns a single visit.
func (s *Server) apiGetVisit(w http.ResponseWriter, r *http.Request) {
	v, err := s.planner.Get(r.PathValue("id"))
	if err != nil {
		s.apiFail(w, err, "loading visit")
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiUpdateVisit edits a visit's date, workload and address.
func (s *Server) apiUpdateVisit(w http.ResponseWriter, r *http.Request) {
	var in visit.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if in.Date == "" {
		apiError(w, "date is required (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	v, err := s.planner.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.apiFail(w, err, "updating visit")
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// apiDeleteVisit removes a visit.
func (s *Server) apiDeleteVisit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.planner.Delete(r.Context(), id); err != nil {
		s.apiFail(w, err, "deleting visit")
		return
	}
	apiJSON(w, map[string]any{"id": id, "removed": true}, http.StatusOK)
}

// apiCompleteVisit marks a pending visit completed.
func (s *Server) apiCompleteVisit(w http.ResponseWriter, r *http.Request) {
	v, err := s.planner.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.apiFail(w, err, "completing visit")
		return
	}
	apiJSON(w, v, http.StatusOK)
}

// CapacityRequest is the body of POST /api/capacity.
type CapacityRequest struct {
	Date         string `json:"date"`
	FormCount    int    `json:"form_count"`
	ProductCount int    `json:"product_count"`
	ExcludeID    string `json:"exclude_id,omitempty"`
}

// apiCheckCapacity reports whether a visit would fit, without saving.
func (s *Server) apiCheckCapacity(w http.ResponseWriter, r *http.Request) {
	var req CapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apiError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	d, err := s.planner.Check(req.Date, req.FormCount, req.ProductCount, req.ExcludeID)
	if err != nil {
		s.apiFail(w, err, "checking capacity")
		return
	}
	apiJSON(w, d, http.StatusOK)
}

// apiListDays returns a report per day with visits.
func (s *Server) apiListDays(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, s.planner.Days(), http.StatusOK)
}

// apiGetDay returns one day's report and visits.
func (s *Server) apiGetDay(w http.ResponseWriter, r *http.Request) {
	d, err := s.planner.Day(r.PathValue("date"))
	if err != nil {
		s.apiFail(w, err, "loading day")
		return
	}
	apiJSON(w, d, http.StatusOK)
}

// apiCloseDay relocates a day's pending visits.
func (s *Server) apiCloseDay(w http.ResponseWriter, r *http.Request) {
	res, err := s.planner.CloseDay(r.Context(), r.PathValue("date"))
	if err != nil {
		s.apiFail(w, err, "closing day")
		return
	}
	apiJSON(w, res, http.StatusOK)
}

// apiLookupAddress resolves a postal code.
func (s *Server) apiLookupAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := s.planner.LookupAddress(r.Context(), r.PathValue("code"))
	if err != nil {
		s.apiFail(w, err, "looking up address")
		return
	}
	apiJSON(w, addr, http.StatusOK)
}
