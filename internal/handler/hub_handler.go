package handler

import (
	"encoding/json"
	"net/http"

	"chat-api/internal/middleware"
	"chat-api/internal/service"
	"chat-api/internal/websocket"
	"chat-api/pkg/apierror"
)

// HubHandler exposes the chat fan-out: a REST broadcast endpoint and the
// websocket attach point.
type HubHandler struct {
	chat *service.ChatService
	hub  *websocket.Hub
}

func NewHubHandler(chat *service.ChatService, hub *websocket.Hub) *HubHandler {
	return &HubHandler{chat: chat, hub: hub}
}

// MessagesAllClients accepts a JSON array of strings and broadcasts each one
// to every connected client.
func (h *HubHandler) MessagesAllClients(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var messages []string
	if err := json.NewDecoder(r.Body).Decode(&messages); err != nil {
		writeError(w, apierror.Validation("body must be a JSON array of strings"))
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.chat.BroadcastAll(messages, claims); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "messages broadcast to all clients", nil)
}

func (h *HubHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	websocket.Serve(h.hub, w, r)
}
