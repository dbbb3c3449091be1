package dto

import (
	"time"
)

// CreateUnitRequest - запрос на создание подразделения
type CreateUnitRequest struct {
	ParentID *int64 `json:"parent_id" validate:"omitempty,min=1"`
	Type     string `json:"type" validate:"required,min=1,max=100"`
	Title    string `json:"title" validate:"required,min=1,max=200"`
}

// UpdateUnitRequest - запрос на обновление подразделения
type UpdateUnitRequest struct {
	ParentID *int64  `json:"parent_id" validate:"omitempty,min=1"`
	Type     *string `json:"type" validate:"omitempty,min=1,max=100"`
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
}

// GetUnitQuery - параметры запроса получения подразделения
type GetUnitQuery struct {
	Depth            int `validate:"min=0,max=5"`
	IncludePositions bool
}

// DeleteUnitQuery - параметры запроса удаления
type DeleteUnitQuery struct {
	Mode             string `validate:"required,oneof=cascade reassign"`
	ReassignToUnitID *int64 `validate:"required_if=Mode reassign,omitempty,min=1"`
}

// CreatePositionRequest - запрос на создание должности
type CreatePositionRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// CreateEmployeeRequest - запрос на создание сотрудника; матрикул выдаётся сервером
type CreateEmployeeRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=200"`
	FirstName         string  `json:"first_name" validate:"required,min=1,max=200"`
	EntryDate         string  `json:"entry_date" validate:"required,datetime=2006-01-02"`
	IsEquipped        bool    `json:"is_equipped"`
	PositionID        *int64  `json:"position_id" validate:"omitempty,min=1"`
	SuperiorMatricule *string `json:"superior_matricule" validate:"omitempty,len=8"`
	UserID            *int64  `json:"user_id" validate:"omitempty,min=1"`
}

// UpdateEmployeeRequest - запрос на обновление сотрудника
type UpdateEmployeeRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=1,max=200"`
	FirstName         *string `json:"first_name" validate:"omitempty,min=1,max=200"`
	IsEquipped        *bool   `json:"is_equipped"`
	PositionID        *int64  `json:"position_id" validate:"omitempty,min=1"`
	SuperiorMatricule *string `json:"superior_matricule" validate:"omitempty,len=8"`
}

// CreateUserRequest - запрос на создание учётной записи
type CreateUserRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=100"`
	Role       string  `json:"role" validate:"required,oneof=admin unit_chief recruit"`
	Matricule  *string `json:"matricule" validate:"omitempty,len=8"`
	SuperiorID *int64  `json:"superior_id" validate:"omitempty,min=1"`
}

// CreateResourceRequest - запрос на регистрацию ресурса
type CreateResourceRequest struct {
	Label       string `json:"label" validate:"required,min=1,max=200"`
	Category    string `json:"category" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=255"`
	ChiefID     int64  `json:"chief_id" validate:"required,min=1"`
}

// CreateRequestRequest - запрос на получение ресурса
type CreateRequestRequest struct {
	ResourceID           int64   `json:"resource_id" validate:"required,min=1"`
	RequesterID          *int64  `json:"requester_id" validate:"omitempty,min=1"`
	BeneficiaryMatricule string  `json:"beneficiary_matricule" validate:"required,len=8"`
	RequestDate          *string `json:"request_date" validate:"omitempty,datetime=2006-01-02"`
}

// BulkCreateRequestsRequest - пакет запросов; каждая запись обрабатывается независимо
type BulkCreateRequestsRequest struct {
	Entries []CreateRequestRequest `json:"entries" validate:"required,min=1,max=100"`
}

// ApproveRequest - одобрение запроса
type ApproveRequest struct {
	ValidatorID  int64   `json:"validator_id" validate:"required,min=1"`
	DeliveryDate *string `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
}

// RejectRequest - отклонение запроса; пустая причина отклоняется сервисом
type RejectRequest struct {
	ValidatorID int64  `json:"validator_id" validate:"required,min=1"`
	Reason      string `json:"reason" validate:"max=255"`
}

// UnitResponse - ответ с данными подразделения
type UnitResponse struct {
	ID        int64              `json:"id"`
	ParentID  *int64             `json:"parent_id"`
	Type      string             `json:"type"`
	Title     string             `json:"title"`
	CreatedAt time.Time          `json:"created_at"`
	Positions []PositionResponse `json:"positions,omitempty"`
	Children  []UnitResponse     `json:"children,omitempty"`
}

// PositionResponse - ответ с данными должности
type PositionResponse struct {
	ID          int64     `json:"id"`
	UnitID      int64     `json:"unit_id"`
	Title       string    `json:"title"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// EmployeeResponse - ответ с данными сотрудника
type EmployeeResponse struct {
	Matricule         string    `json:"matricule"`
	Name              string    `json:"name"`
	FirstName         string    `json:"first_name"`
	IsEquipped        bool      `json:"is_equipped"`
	Status            string    `json:"status"`
	EntryDate         string    `json:"entry_date"`
	PositionID        *int64    `json:"position_id"`
	SuperiorMatricule *string   `json:"superior_matricule"`
	UserID            *int64    `json:"user_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// UserResponse - ответ с данными учётной записи
type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	Matricule  *string   `json:"matricule"`
	IsActive   bool      `json:"is_active"`
	SuperiorID *int64    `json:"superior_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResourceResponse - ответ с данными ресурса
type ResourceResponse struct {
	ID              int64      `json:"id"`
	Label           string     `json:"label"`
	Category        string     `json:"category"`
	Description     string     `json:"description,omitempty"`
	State           string     `json:"state"`
	HolderMatricule *string    `json:"holder_matricule"`
	AttributionDate *time.Time `json:"attribution_date"`
	ChiefID         int64      `json:"chief_id"`
}

// ValidationResponse - ответ с данными решения
type ValidationResponse struct {
	ID              int64      `json:"id"`
	RequestID       int64      `json:"request_id"`
	ValidatorID     int64      `json:"validator_id"`
	Status          string     `json:"status"`
	ValidationDate  *time.Time `json:"validation_date"`
	DeliveryDate    *time.Time `json:"delivery_date"`
	RejectionReason *string    `json:"rejection_reason"`
}

// RequestResponse - ответ с данными запроса и его решения
type RequestResponse struct {
	ID                   int64               `json:"id"`
	RequesterID          *int64              `json:"requester_id"`
	BeneficiaryMatricule string              `json:"beneficiary_matricule"`
	ResourceID           int64               `json:"resource_id"`
	ReceiverID           int64               `json:"receiver_id"`
	RequestDate          string              `json:"request_date"`
	IsOpen               bool                `json:"is_open"`
	Validation           *ValidationResponse `json:"validation,omitempty"`
}

// CreateRequestResponse - результат создания запроса
type CreateRequestResponse struct {
	RequestID    int64  `json:"request_id"`
	ValidationID int64  `json:"validation_id"`
	Status       string `json:"status"`
}

// Статусы записи пакетного создания
const (
	BulkStatusSuccess = "success"
	BulkStatusError   = "error"
)

// BulkResult - результат обработки одной записи пакета
type BulkResult struct {
	ResourceID int64  `json:"resource_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	RequestID  *int64 `json:"request_id,omitempty"`
}

// NotificationResponse - ответ с данными уведомления
type NotificationResponse struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	EventType string         `json:"event_type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarkAllReadResponse - число помеченных уведомлений
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"kind,omitempty"`
}
