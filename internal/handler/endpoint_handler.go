package handler

import (
	"net/http"

	"chat-api/internal/model"
	"chat-api/internal/service"
)

type EndpointHandler struct {
	service *service.EndpointService
}

func NewEndpointHandler(service *service.EndpointService) *EndpointHandler {
	return &EndpointHandler{service: service}
}

func (h *EndpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.SaveEndpointRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	policy, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "endpoint created", policy)
}

func (h *EndpointHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.SaveEndpointRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	policy, err := h.service.Edit(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "endpoint updated", policy)
}

func (h *EndpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	policy, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", policy)
}

func (h *EndpointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	policy, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "endpoint deleted", policy)
}

func (h *EndpointHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := model.EndpointFilter{
		Route: query.Get("route"),
		Verb:  query.Get("verb"),
		Page:  queryInt(query.Get("page"), 0),
		Limit: queryInt(query.Get("limit"), 0),
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", page)
}
