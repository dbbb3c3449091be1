package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
)

// base - общие для всех хендлеров разбор запроса и формирование ответа
type base struct {
	validator *validator.Validate
	logger    *slog.Logger
}

func newBase(logger *slog.Logger) base {
	return base{
		validator: validator.New(),
		logger:    logger,
	}
}

// decode читает JSON тело и проверяет его; при ошибке ответ уже отправлен
func (b *base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.respondError(w, http.StatusBadRequest, "invalid request body", err.Error(), domain.KindValidation)
		return false
	}

	return b.validate(w, dst)
}

func (b *base) validate(w http.ResponseWriter, v any) bool {
	if err := b.validator.Struct(v); err != nil {
		b.respondError(w, http.StatusBadRequest, "validation error", err.Error(), domain.KindValidation)
		return false
	}
	return true
}

// pathParts разбивает путь на сегменты: /units/5/positions -> [units 5 positions]
func pathParts(r *http.Request) []string {
	return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
}

// pathID разбирает числовой идентификатор из сегмента пути idx
func pathID(r *http.Request, idx int) (int64, error) {
	parts := pathParts(r)
	if len(parts) <= idx || parts[idx] == "" {
		return 0, errors.New("id is required")
	}

	id, err := strconv.ParseInt(parts[idx], 10, 64)
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, errors.New("id must be positive")
	}
	return id, nil
}

// statusFor сопоставляет категорию ошибки HTTP статусу
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (b *base) handleServiceError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindStorage {
		b.logger.Error("internal error", slog.Any("error", err))
		b.respondError(w, http.StatusInternalServerError, "internal server error", "", domain.KindStorage)
		return
	}

	b.respondError(w, statusFor(de.Kind), de.Message, "", de.Kind)
}

func (b *base) respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		b.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

func (b *base) respondError(w http.ResponseWriter, status int, errMsg, details string, kind domain.Kind) {
	w.WriteHeader(status)
	resp := dto.ErrorResponse{Error: errMsg, Kind: string(kind)}
	if details != "" {
		resp.Message = details
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Error("failed to encode error response", slog.Any("error", err))
	}
}
