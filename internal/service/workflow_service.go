package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

const dateLayout = "2006-01-02"

// WorkflowService ведёт жизненный цикл запроса: Request, Validation и состояние ресурса
// меняются одной транзакцией, уведомления и трансляции отправляются после фиксации.
type WorkflowService interface {
	CreateRequest(ctx context.Context, req *dto.CreateRequestRequest) (*domain.Request, error)
	CreateRequestsBulk(ctx context.Context, req *dto.BulkCreateRequestsRequest) []dto.BulkResult
	GetRequest(ctx context.Context, id int64) (*domain.Request, error)
	Approve(ctx context.Context, validationID int64, req *dto.ApproveRequest) (*domain.Validation, error)
	Reject(ctx context.Context, validationID int64, req *dto.RejectRequest) (*domain.Validation, error)
}

type workflowService struct {
	txManager     repository.TxManager
	requestRepo   repository.RequestRepository
	resourceRepo  repository.ResourceRepository
	empRepo       repository.EmployeeRepository
	userRepo      repository.UserRepository
	notifications NotificationService
	broadcaster   *broadcast.Broadcaster
	validator     *validator.Validate
	logger        *slog.Logger
	now           func() time.Time
}

// NewWorkflowService создаёт новый экземпляр сервиса
func NewWorkflowService(
	txManager repository.TxManager,
	requestRepo repository.RequestRepository,
	resourceRepo repository.ResourceRepository,
	empRepo repository.EmployeeRepository,
	userRepo repository.UserRepository,
	notifications NotificationService,
	broadcaster *broadcast.Broadcaster,
	logger *slog.Logger,
) WorkflowService {
	return &workflowService{
		txManager:     txManager,
		requestRepo:   requestRepo,
		resourceRepo:  resourceRepo,
		empRepo:       empRepo,
		userRepo:      userRepo,
		notifications: notifications,
		broadcaster:   broadcaster,
		validator:     validator.New(),
		logger:        logger,
		now:           time.Now,
	}
}

func (s *workflowService) CreateRequest(ctx context.Context, in *dto.CreateRequestRequest) (*domain.Request, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := s.now()
	requestDate := now
	if in.RequestDate != nil {
		parsed, err := time.Parse(dateLayout, *in.RequestDate)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid request_date: %v", err))
		}
		requestDate = parsed
	}

	var created *domain.Request
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		// Блокируем ресурс: конкурирующие запросы на него выстраиваются в очередь
		res, err := s.resourceRepo.GetForUpdate(ctx, in.ResourceID)
		if err != nil {
			return err
		}

		open, err := s.requestRepo.HasOpenForResource(ctx, res.ID)
		if err != nil {
			return err
		}
		if open {
			return domain.ErrOpenRequestExists
		}
		if res.State != domain.StateFree {
			return domain.ErrResourceUnavailable
		}

		beneficiary, err := s.empRepo.GetByMatricule(ctx, in.BeneficiaryMatricule)
		if err != nil {
			if errors.Is(err, domain.ErrEmployeeNotFound) {
				return domain.ErrBeneficiaryNotFound
			}
			return err
		}
		if beneficiary.Status == domain.EmployeeDisabled {
			return domain.ErrEmployeeDisabled
		}

		if in.RequesterID != nil {
			if _, err := s.userRepo.GetByID(ctx, *in.RequesterID); err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return domain.ErrRequesterNotFound
				}
				return err
			}
		}

		receiverID, err := s.resourceRepo.ResolveChief(ctx, res.ID)
		if err != nil {
			return err
		}

		// Руководитель, запрашивающий собственный ресурс, не нуждается в согласовании
		selfApproved := in.RequesterID != nil && *in.RequesterID == receiverID

		req := &domain.Request{
			RequesterID:          in.RequesterID,
			BeneficiaryMatricule: beneficiary.Matricule,
			ResourceID:           res.ID,
			ReceiverID:           receiverID,
			RequestDate:          requestDate,
			IsOpen:               !selfApproved,
		}
		if err := s.requestRepo.Create(ctx, req); err != nil {
			return err
		}

		val := &domain.Validation{
			RequestID:   req.ID,
			ValidatorID: receiverID,
			Status:      domain.ValidationPending,
		}
		if selfApproved {
			val.Status = domain.ValidationApproved
			val.ValidationDate = &now
			val.DeliveryDate = &now
		}
		if err := s.requestRepo.CreateValidation(ctx, val); err != nil {
			return err
		}

		if selfApproved {
			err = s.resourceRepo.MarkHeld(ctx, res.ID, beneficiary.Matricule, now)
		} else {
			err = s.resourceRepo.MarkPending(ctx, res.ID)
		}
		if err != nil {
			return err
		}

		req.Validation = val
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCreated(created)

	s.broadcaster.Announce(broadcast.EntityRequest, broadcast.ActionCreated)
	s.broadcaster.Announce(broadcast.EntityResource, broadcast.ActionModified)

	s.logger.Info("request created",
		slog.Int64("request_id", created.ID),
		slog.Int64("resource_id", created.ResourceID),
		slog.String("status", string(created.Validation.Status)),
	)
	return created, nil
}

func (s *workflowService) notifyCreated(req *domain.Request) {
	data := map[string]any{
		"request_id":    req.ID,
		"validation_id": req.Validation.ID,
		"resource_id":   req.ResourceID,
		"beneficiary":   req.BeneficiaryMatricule,
		"status":        string(req.Validation.Status),
	}

	if req.Validation.Status == domain.ValidationApproved {
		s.notifications.Notify(Notice{
			UserID:    req.ReceiverID,
			EventType: domain.EventRequestUpdate,
			Message:   fmt.Sprintf("Resource %d attributed to %s without validation", req.ResourceID, req.BeneficiaryMatricule),
			Data:      data,
		})
		return
	}

	notices := []Notice{{
		UserID:    req.ReceiverID,
		EventType: domain.EventRequestUpdate,
		Message:   fmt.Sprintf("New pending request %d for resource %d", req.ID, req.ResourceID),
		Data:      data,
	}}
	if req.RequesterID != nil {
		notices = append(notices, Notice{
			UserID:    *req.RequesterID,
			EventType: domain.EventRequestUpdate,
			Message:   fmt.Sprintf("Request %d created and waiting for validation", req.ID),
			Data:      data,
		})
	}
	s.notifications.Notify(notices...)
}

func (s *workflowService) CreateRequestsBulk(ctx context.Context, in *dto.BulkCreateRequestsRequest) []dto.BulkResult {
	results := make([]dto.BulkResult, 0, len(in.Entries))

	// Каждая запись - отдельная транзакция, ошибка одной не откатывает остальные
	for i := range in.Entries {
		entry := in.Entries[i]
		result := dto.BulkResult{ResourceID: entry.ResourceID}

		req, err := s.CreateRequest(ctx, &entry)
		if err != nil {
			result.Status = dto.BulkStatusError
			result.Message = err.Error()
		} else {
			result.Status = dto.BulkStatusSuccess
			result.Message = string(req.Validation.Status)
			result.RequestID = &req.ID
		}
		results = append(results, result)
	}

	return results
}

func (s *workflowService) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	return s.requestRepo.GetByID(ctx, id)
}

func (s *workflowService) Approve(ctx context.Context, validationID int64, in *dto.ApproveRequest) (*domain.Validation, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	now := s.now()
	delivery := now
	if in.DeliveryDate != nil {
		parsed, err := time.Parse(dateLayout, *in.DeliveryDate)
		if err != nil {
			return nil, domain.NewValidationError(fmt.Sprintf("invalid delivery_date: %v", err))
		}
		delivery = parsed
	}

	val, req, err := s.decide(ctx, validationID, in.ValidatorID, func(ctx context.Context, val *domain.Validation, req *domain.Request) error {
		val.Status = domain.ValidationApproved
		val.ValidationDate = &now
		val.DeliveryDate = &delivery
		val.RejectionReason = nil
		if err := s.requestRepo.Decide(ctx, val); err != nil {
			return err
		}
		return s.resourceRepo.MarkHeld(ctx, req.ResourceID, req.BeneficiaryMatricule, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecided(val, req, fmt.Sprintf("Request %d approved, resource %d attributed to %s", req.ID, req.ResourceID, req.BeneficiaryMatricule))
	s.announceDecided()

	s.logger.Info("validation approved", slog.Int64("validation_id", val.ID), slog.Int64("request_id", req.ID))
	return val, nil
}

func (s *workflowService) Reject(ctx context.Context, validationID int64, in *dto.RejectRequest) (*domain.Validation, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.ErrRejectionReasonRequired
	}

	now := s.now()
	val, req, err := s.decide(ctx, validationID, in.ValidatorID, func(ctx context.Context, val *domain.Validation, req *domain.Request) error {
		val.Status = domain.ValidationRejected
		val.ValidationDate = &now
		val.DeliveryDate = nil
		val.RejectionReason = &reason
		if err := s.requestRepo.Decide(ctx, val); err != nil {
			return err
		}
		// Отклонение возвращает ресурс в свободные
		return s.resourceRepo.MarkFree(ctx, req.ResourceID)
	})
	if err != nil {
		return nil, err
	}

	s.notifyDecided(val, req, fmt.Sprintf("Request %d rejected: %s", req.ID, reason))
	s.announceDecided()

	s.logger.Info("validation rejected", slog.Int64("validation_id", val.ID), slog.Int64("request_id", req.ID))
	return val, nil
}

// decide выполняет общий для одобрения и отклонения каркас транзакции:
// решение должно существовать и ожидать, валидатор - существовать, запрос закрывается
func (s *workflowService) decide(
	ctx context.Context,
	validationID, validatorID int64,
	apply func(ctx context.Context, val *domain.Validation, req *domain.Request) error,
) (*domain.Validation, *domain.Request, error) {
	var (
		val *domain.Validation
		req *domain.Request
	)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		val, err = s.requestRepo.GetValidationForUpdate(ctx, validationID)
		if err != nil {
			return err
		}
		if val.Status != domain.ValidationPending {
			return domain.ErrValidationNotPending
		}

		if _, err := s.userRepo.GetByID(ctx, validatorID); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrValidatorNotFound
			}
			return err
		}

		req, err = s.requestRepo.GetByID(ctx, val.RequestID)
		if err != nil {
			return err
		}

		val.ValidatorID = validatorID
		if err := apply(ctx, val, req); err != nil {
			return err
		}

		req.IsOpen = false
		req.Validation = val
		return s.requestRepo.Close(ctx, req.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	return val, req, nil
}

func (s *workflowService) notifyDecided(val *domain.Validation, req *domain.Request, message string) {
	data := map[string]any{
		"request_id":    req.ID,
		"validation_id": val.ID,
		"resource_id":   req.ResourceID,
		"status":        string(val.Status),
	}

	notices := []Notice{{
		UserID:    val.ValidatorID,
		EventType: domain.EventValidation,
		Message:   message,
		Data:      data,
	}}
	if req.RequesterID != nil && *req.RequesterID != val.ValidatorID {
		notices = append(notices, Notice{
			UserID:    *req.RequesterID,
			EventType: domain.EventValidation,
			Message:   message,
			Data:      data,
		})
	}
	s.notifications.Notify(notices...)
}

func (s *workflowService) announceDecided() {
	s.broadcaster.Announce(broadcast.EntityValidation, broadcast.ActionModified)
	s.broadcaster.Announce(broadcast.EntityRequest, broadcast.ActionModified)
	s.broadcaster.Announce(broadcast.EntityResource, broadcast.ActionModified)
}
