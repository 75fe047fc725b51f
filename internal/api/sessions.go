package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/siadai/siadchat/internal/chat"
	"github.com/siadai/siadchat/internal/fetch"
)

type createSessionRequest struct {
	TaxID string `json:"cnpj"`
	Email string `json:"email"`
}

type postMessageRequest struct {
	Message string `json:"message"`
}

type postMessageResponse struct {
	Reply   chat.Entry `json:"reply"`
	Session chat.View  `json:"session"`
}

func handleCreateSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}

	var request createSessionRequest
	if err := decodeBody(w, r, true, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid session request body", false, map[string]any{"details": err.Error()})
		return
	}
	identity := fetch.Identity{
		TaxID: strings.TrimSpace(request.TaxID),
		Email: strings.TrimSpace(request.Email),
	}
	if identity.TaxID == "" || identity.Email == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "IDENTITY_REQUIRED", "cnpj and email are required", false, nil)
		return
	}

	session := deps.Chat.Start(r.Context(), identity)
	writeJSON(w, http.StatusCreated, session.View(deps.TablePreviewRows))
}

func handleGetSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}
	session, err := deps.Chat.Session(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View(deps.TablePreviewRows))
}

func handleReloadSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}
	session, err := deps.Chat.Reload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View(deps.TablePreviewRows))
}

func handlePostMessage(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}

	var request postMessageRequest
	if err := decodeBody(w, r, true, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid message request body", false, map[string]any{"details": err.Error()})
		return
	}

	session, reply, err := deps.Chat.Ask(r.Context(), r.PathValue("id"), request.Message)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postMessageResponse{
		Reply:   reply,
		Session: session.View(deps.TablePreviewRows),
	})
}

func handleResetSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}
	session, err := deps.Chat.Reset(r.PathValue("id"))
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.View(deps.TablePreviewRows))
}

func handleDeleteSession(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}
	if err := deps.Chat.End(r.PathValue("id")); err != nil {
		writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(r.Context(), w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error(), false, map[string]any{"session_id": r.PathValue("id")})
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_REQUIRED", err.Error(), false, nil)
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "SESSION_FAILED", err.Error(), true, nil)
	}
}
