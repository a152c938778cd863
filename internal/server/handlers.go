package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/easeaico/tsukuyomi/internal/chat"
	"github.com/easeaico/tsukuyomi/internal/emotion"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	chat   Chatter
	memory Memory
}

type chatRequest struct {
	Message string `json:"message"`
}

type adjustRequest struct {
	Amount *int `json:"amount"`
}

type intimacyResponse struct {
	Intimacy int    `json:"intimacy"`
	Level    string `json:"intimacy_level"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) chatTurn(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	resp, err := h.chat.Reply(r.Context(), UserID(r.Context()), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, "No message provided.")
		return
	}
	if err != nil {
		slog.Error("chat turn failed", "user_id", UserID(r.Context()), "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) getIntimacy(w http.ResponseWriter, r *http.Request) {
	state := h.memory.GetState(r.Context(), UserID(r.Context()))
	writeJSON(w, http.StatusOK, intimacyResponse{Intimacy: state.Intimacy, Level: state.Level})
}

func (h *handlers) updateIntimacy(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeBody(r, &req); err != nil || req.Amount == nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be an integer")
		return
	}

	v := h.memory.Adjust(r.Context(), UserID(r.Context()), *req.Amount)
	writeJSON(w, http.StatusOK, intimacyResponse{Intimacy: v, Level: emotion.LevelName(v)})
}

func (h *handlers) clearSession(w http.ResponseWriter, r *http.Request) {
	h.chat.ClearSession(UserID(r.Context()))
	writeJSON(w, http.StatusOK, messageResponse{Message: "已清除對話記憶（短期記憶）"})
}

func (h *handlers) clearMemory(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	h.chat.ClearSession(userID)
	// the store logs its own failure; the client still gets its answer
	_ = h.memory.Clear(r.Context(), userID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "已清除使用者的所有記憶（長期 + 短期 )"})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
