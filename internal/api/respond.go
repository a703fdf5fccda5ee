package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ahrav/namesmith/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg, Code: status})
}

// respondStoreError maps lookup failures to 404 and hides everything else
// behind a 500.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrJobNotFound):
		respondError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, domain.ErrDomainNotFound):
		respondError(w, http.StatusNotFound, "domain not found")
	default:
		s.logger.Error("store call failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func queryInt(r *http.Request, key string) (int, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func pageParams(r *http.Request) (limit, offset int, err error) {
	if limit, _, err = queryInt(r, "limit"); err != nil {
		return 0, 0, errors.New("limit must be an integer")
	}
	if offset, _, err = queryInt(r, "offset"); err != nil {
		return 0, 0, errors.New("offset must be an integer")
	}
	if limit < 0 || offset < 0 {
		return 0, 0, errors.New("limit and offset must be non-negative")
	}
	return limit, offset, nil
}
