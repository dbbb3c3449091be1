package handler

import (
	"log/slog"
	"net/http"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/service"
)

// WorkflowHandler обслуживает запросы на ресурсы и решения по ним
type WorkflowHandler struct {
	base
	workflow service.WorkflowService
}

func NewWorkflowHandler(workflow service.WorkflowService, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		base:     newBase(logger),
		workflow: workflow,
	}
}

func (h *WorkflowHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.workflow.CreateRequest(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, dto.CreateRequestResponse{
		RequestID:    created.ID,
		ValidationID: created.Validation.ID,
		Status:       string(created.Validation.Status),
	})
}

// CreateRequestsBulk всегда отвечает 200: результат каждой записи в теле ответа
func (h *WorkflowHandler) CreateRequestsBulk(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkCreateRequestsRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.respondJSON(w, http.StatusOK, h.workflow.CreateRequestsBulk(r.Context(), &req))
}

func (h *WorkflowHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request id", err.Error(), domain.KindValidation)
		return
	}

	req, err := h.workflow.GetRequest(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *WorkflowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.validationID(w, r)
	if !ok {
		return
	}

	var req dto.ApproveRequest
	if !h.decode(w, r, &req) {
		return
	}

	val, err := h.workflow.Approve(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toValidationResponse(val))
}

func (h *WorkflowHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.validationID(w, r)
	if !ok {
		return
	}

	var req dto.RejectRequest
	if !h.decode(w, r, &req) {
		return
	}

	val, err := h.workflow.Reject(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toValidationResponse(val))
}

func (h *WorkflowHandler) validationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid validation id", err.Error(), domain.KindValidation)
		return 0, false
	}
	return id, true
}
