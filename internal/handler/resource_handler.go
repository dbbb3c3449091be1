package handler

import (
	"log/slog"
	"net/http"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/service"
)

type ResourceHandler struct {
	base
	resourceService service.ResourceService
}

func NewResourceHandler(resourceService service.ResourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{
		base:            newBase(logger),
		resourceService: resourceService,
	}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateResourceRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.resourceService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toResourceResponse(res))
}

func (h *ResourceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	res, err := h.resourceService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toResourceResponse(res))
}

func (h *ResourceHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, ok := h.resourceID(w, r)
	if !ok {
		return
	}

	res, err := h.resourceService.Release(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toResourceResponse(res))
}

// ListByChief отдаёт ресурсы, за которые отвечает пользователь: /users/{id}/resources
func (h *ResourceHandler) ListByChief(w http.ResponseWriter, r *http.Request) {
	chiefID, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id", err.Error(), domain.KindValidation)
		return
	}

	resources, err := h.resourceService.GetByChiefID(r.Context(), chiefID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]dto.ResourceResponse, len(resources))
	for i := range resources {
		resp[i] = toResourceResponse(&resources[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *ResourceHandler) resourceID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid resource id", err.Error(), domain.KindValidation)
		return 0, false
	}
	return id, true
}
