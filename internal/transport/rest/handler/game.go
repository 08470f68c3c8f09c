package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/rest/middleware"
)

// GameHandler handles game state transitions.
type GameHandler struct {
	gameSvc *service.GameService
}

// NewGameHandler creates a new game handler.
func NewGameHandler(gameSvc *service.GameService) *GameHandler {
	return &GameHandler{gameSvc: gameSvc}
}

// Start handles POST /v1/rooms/{roomId}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	callerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.StartGame(r.Context(), roomID, callerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "in-progress"})
}

// SubmitAnswerRequest is the request body for submitting an answer.
type SubmitAnswerRequest struct {
	QuestionIndex int  `json:"questionIndex"`
	AnswerIndex   int  `json:"answerIndex"`
	IsCorrect     bool `json:"isCorrect"`
}

// SubmitAnswer handles POST /v1/rooms/{roomId}/answers
func (h *GameHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	playerID := middleware.GetPlayerID(r.Context())

	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.SubmitAnswer(r.Context(), roomID, playerID, req.QuestionIndex, req.AnswerIndex, req.IsCorrect); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// NextQuestionRequest carries the index the caller believes is current.
type NextQuestionRequest struct {
	CurrentIndex int `json:"currentIndex"`
}

// Next handles POST /v1/rooms/{roomId}/next
func (h *GameHandler) Next(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	callerID := middleware.GetPlayerID(r.Context())

	var req NextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.NextQuestion(r.Context(), roomID, callerID, req.CurrentIndex); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "advanced"})
}

// End handles POST /v1/rooms/{roomId}/end
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	callerID := middleware.GetPlayerID(r.Context())

	if err := h.gameSvc.EndGame(r.Context(), roomID, callerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}
