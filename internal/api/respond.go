package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"shareit/internal/domain"
	"shareit/internal/worker"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps core errors to HTTP statuses. Access violations
// arrive here already disguised as not-found.
func writeDomainError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	switch {
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsUnsupportedState(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsBadRequest(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsDuplicateEmail(err):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, worker.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

const userHeader = "X-Sharer-User-Id"

// callerID reads the identity header every protected route requires.
func callerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(userHeader)
	if raw == "" {
		return 0, errors.New("X-Sharer-User-Id header is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("X-Sharer-User-Id header is invalid")
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

const (
	defaultFrom = 0
	defaultSize = 10
)

// paging parses the (from, size) window with defaults; from must be >= 0 and
// size >= 1.
func paging(r *http.Request) (int, int, error) {
	from := defaultFrom
	size := defaultSize

	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, errors.New("from must be a non-negative integer")
		}
		from = v
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return 0, 0, errors.New("size must be a positive integer")
		}
		size = v
	}
	return from, size, nil
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
