package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/service"
)

type UnitHandler struct {
	base
	unitService service.UnitService
	posService  service.PositionService
}

func NewUnitHandler(unitService service.UnitService, posService service.PositionService, logger *slog.Logger) *UnitHandler {
	return &UnitHandler{
		base:        newBase(logger),
		unitService: unitService,
		posService:  posService,
	}
}

func (h *UnitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	unit, err := h.unitService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toUnitResponse(unit, false))
}

func (h *UnitHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.unitID(w, r)
	if !ok {
		return
	}

	query := h.parseGetQuery(r)
	if !h.validate(w, &query) {
		return
	}

	unit, err := h.unitService.GetByID(r.Context(), id, &query)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toUnitResponse(unit, query.IncludePositions))
}

func (h *UnitHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	unit, err := h.unitService.Update(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toUnitResponse(unit, false))
}

func (h *UnitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.unitID(w, r)
	if !ok {
		return
	}

	query := h.parseDeleteQuery(r)
	if !h.validate(w, &query) {
		return
	}

	if err := h.unitService.Delete(r.Context(), id, &query); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UnitHandler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req dto.CreatePositionRequest
	if !h.decode(w, r, &req) {
		return
	}

	pos, err := h.posService.Create(r.Context(), unitID, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toPositionResponse(pos))
}

func (h *UnitHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	positions, err := h.posService.GetByUnitID(r.Context(), unitID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]dto.PositionResponse, len(positions))
	for i := range positions {
		resp[i] = toPositionResponse(&positions[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *UnitHandler) unitID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid unit id", err.Error(), domain.KindValidation)
		return 0, false
	}
	return id, true
}

func (h *UnitHandler) parseGetQuery(r *http.Request) dto.GetUnitQuery {
	query := dto.GetUnitQuery{
		Depth:            1,
		IncludePositions: true,
	}

	if depthStr := r.URL.Query().Get("depth"); depthStr != "" {
		if depth, err := strconv.Atoi(depthStr); err == nil {
			query.Depth = depth
		}
	}

	if includeStr := r.URL.Query().Get("include_positions"); includeStr != "" {
		query.IncludePositions = includeStr == "true"
	}

	return query
}

func (h *UnitHandler) parseDeleteQuery(r *http.Request) dto.DeleteUnitQuery {
	query := dto.DeleteUnitQuery{
		Mode: r.URL.Query().Get("mode"),
	}

	if reassignStr := r.URL.Query().Get("reassign_to_unit_id"); reassignStr != "" {
		if reassignID, err := strconv.ParseInt(reassignStr, 10, 64); err == nil {
			query.ReassignToUnitID = &reassignID
		}
	}

	return query
}
