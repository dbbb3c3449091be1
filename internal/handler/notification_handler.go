package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/service"
)

type NotificationHandler struct {
	base
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		base:          newBase(logger),
		notifications: notifications,
	}
}

// ListForUser отдаёт уведомления пользователя, новые первыми: /users/{id}/notifications
func (h *NotificationHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid user id", err.Error(), domain.KindValidation)
		return
	}

	notifications, err := h.notifications.ListForUser(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	resp := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		resp[i] = toNotificationResponse(&notifications[i])
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, toNotificationResponse(n))
}

// MarkAllRead без user_id помечает прочитанными уведомления всех пользователей
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	var userID *int64
	if userStr := r.URL.Query().Get("user_id"); userStr != "" {
		id, err := strconv.ParseInt(userStr, 10, 64)
		if err != nil || id < 1 {
			h.respondError(w, http.StatusBadRequest, "invalid user_id", userStr, domain.KindValidation)
			return
		}
		userID = &id
	}

	updated, err := h.notifications.MarkAllRead(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, dto.MarkAllReadResponse{Updated: updated})
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.notificationID(w, r)
	if !ok {
		return
	}

	if err := h.notifications.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) notificationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r, 1)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid notification id", err.Error(), domain.KindValidation)
		return 0, false
	}
	return id, true
}
