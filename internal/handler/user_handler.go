package handler

import (
	"log/slog"
	"net/http"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/service"
)

type UserHandler struct {
	base
	userService service.UserService
}

func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		base:        newBase(logger),
		userService: userService,
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id", err.Error(), domain.KindValidation)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toUserResponse(user))
}
