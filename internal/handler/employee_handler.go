package handler

import (
	"log/slog"
	"net/http"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/matricule"
	"github.com/resource-request-api/internal/service"
)

type EmployeeHandler struct {
	base
	empService service.EmployeeService
}

func NewEmployeeHandler(empService service.EmployeeService, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		base:       newBase(logger),
		empService: empService,
	}
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.empService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.matricule(w, r)
	if !ok {
		return
	}

	emp, err := h.empService.GetByMatricule(r.Context(), m)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	m, ok := h.matricule(w, r)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}

	emp, err := h.empService.Update(r.Context(), m, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) Disable(w http.ResponseWriter, r *http.Request) {
	m, ok := h.matricule(w, r)
	if !ok {
		return
	}

	emp, err := h.empService.Disable(r.Context(), m)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toEmployeeResponse(emp))
}

func (h *EmployeeHandler) matricule(w http.ResponseWriter, r *http.Request) (string, bool) {
	parts := pathParts(r)
	if len(parts) < 2 || parts[1] == "" {
		h.respondError(w, http.StatusBadRequest, "invalid matricule", "matricule is required", domain.KindValidation)
		return "", false
	}

	m := parts[1]
	if _, _, err := matricule.Parse(m); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid matricule", err.Error(), domain.KindValidation)
		return "", false
	}
	return m, true
}
