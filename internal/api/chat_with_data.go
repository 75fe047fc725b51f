package api

import (
	"net/http"
	"strings"

	"github.com/siadai/siadchat/internal/fetch"
)

const noCustomerDataMessage = "Nenhum dado encontrado para o cliente especificado"

type chatWithDataRequest struct {
	TaxID  string `json:"cnpj"`
	Email  string `json:"email"`
	Prompt string `json:"prompt"`
}

// handleChatWithData answers one prompt in a throwaway session.
func handleChatWithData(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Chat == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat service is not configured", false, nil)
		return
	}

	var request chatWithDataRequest
	if err := decodeBody(w, r, false, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid chat request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.Prompt) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required", false, nil)
		return
	}

	session := deps.Chat.Start(r.Context(), fetch.Identity{
		TaxID: strings.TrimSpace(request.TaxID),
		Email: strings.TrimSpace(request.Email),
	})
	defer func() { _ = deps.Chat.End(session.ID()) }()

	if session.Table().IsEmpty() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": noCustomerDataMessage})
		return
	}

	_, reply, err := deps.Chat.Ask(r.Context(), session.ID(), request.Prompt)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply.Message})
}
