package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Messages cross the boundary verbatim; callers show them to users.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoomExpired):
		writeError(w, http.StatusGone, err.Error())
	case errors.Is(err, service.ErrRoomFull), errors.Is(err, service.ErrGameStarted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotHost):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidPlayerID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
