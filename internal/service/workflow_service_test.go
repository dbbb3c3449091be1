package service_test

import (
	"context"
	"errors"

	"github.com/resource-request-api/internal/broadcast"
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
	"github.com/resource-request-api/internal/repository"
)

type failingNotificationRepo struct {
	repository.NotificationRepository
}

func (failingNotificationRepo) Create(context.Context, *domain.Notification) error {
	return errors.New("notification store unavailable")
}

func (s *ServiceSuite) TestCreateRequest_SelfApproval() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{
		ResourceID:           res.ID,
		RequesterID:          ptr(chief.ID),
		BeneficiaryMatricule: emp.Matricule,
	})
	s.Require().NoError(err)

	s.Equal(domain.ValidationApproved, req.Validation.Status)
	s.NotNil(req.Validation.ValidationDate)
	s.NotNil(req.Validation.DeliveryDate)
	s.False(req.IsOpen)
	s.Equal(chief.ID, req.ReceiverID)

	// Состояние "в ожидании" не должно появляться ни на миг
	stored, err := s.workflow.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(domain.ValidationApproved, stored.Validation.Status)

	got := s.resourceState(res.ID)
	s.Equal(domain.StateHeld, got.State)
	s.Require().NotNil(got.HolderMatricule)
	s.Equal(emp.Matricule, *got.HolderMatricule)

	s.flush()
	s.Equal(int64(1), s.totalNotifications())
	s.Equal(int64(1), s.notificationCount(chief.ID))
	s.Equal(1, s.publisher.count(broadcast.EntityRequest, broadcast.ActionCreated))
	s.Equal(1, s.publisher.count(broadcast.EntityResource, broadcast.ActionModified))
	s.Equal(1, s.publisher.count(broadcast.EntityNotification, broadcast.ActionCreated))
}

func (s *ServiceSuite) TestCreateRequest_PendingValidation() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	requester := s.seedUser("recruit", domain.RoleRecruit)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{
		ResourceID:           res.ID,
		RequesterID:          ptr(requester.ID),
		BeneficiaryMatricule: emp.Matricule,
		RequestDate:          ptr("2024-05-10"),
	})
	s.Require().NoError(err)

	s.Equal(domain.ValidationPending, req.Validation.Status)
	s.Nil(req.Validation.ValidationDate)
	s.Nil(req.Validation.DeliveryDate)
	s.True(req.IsOpen)
	s.Equal("2024-05-10", req.RequestDate.Format("2006-01-02"))
	s.Equal(domain.StatePending, s.resourceState(res.ID).State)

	s.flush()
	s.Equal(int64(2), s.totalNotifications())
	s.Equal(int64(1), s.notificationCount(chief.ID))
	s.Equal(int64(1), s.notificationCount(requester.ID))
}

func (s *ServiceSuite) TestCreateRequest_WithoutRequesterNotifiesReceiverOnly() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, BeneficiaryMatricule: emp.Matricule})
	s.Require().NoError(err)
	s.Equal(domain.ValidationPending, req.Validation.Status)

	s.flush()
	s.Equal(int64(1), s.totalNotifications())
	s.Equal(int64(1), s.notificationCount(chief.ID))
}

func (s *ServiceSuite) TestCreateRequest_ConflictOnOpenRequest() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	requester := s.seedUser("recruit", domain.RoleRecruit)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	in := &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(requester.ID), BeneficiaryMatricule: emp.Matricule}
	_, err := s.workflow.CreateRequest(s.ctx, in)
	s.Require().NoError(err)

	_, err = s.workflow.CreateRequest(s.ctx, in)
	s.ErrorIs(err, domain.ErrOpenRequestExists)
	s.ErrorIs(err, domain.ErrConflict)

	var count int64
	s.Require().NoError(s.db.Model(&domain.Request{}).Count(&count).Error)
	s.Equal(int64(1), count)
}

func (s *ServiceSuite) TestCreateRequest_HeldResourceUnavailable() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	in := &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(chief.ID), BeneficiaryMatricule: emp.Matricule}
	_, err := s.workflow.CreateRequest(s.ctx, in)
	s.Require().NoError(err)

	_, err = s.workflow.CreateRequest(s.ctx, in)
	s.ErrorIs(err, domain.ErrResourceUnavailable)
	s.ErrorIs(err, domain.ErrConflict)
}

func (s *ServiceSuite) TestCreateRequest_PreconditionsLeaveNoTrace() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	_, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, BeneficiaryMatricule: "2024-999"})
	s.ErrorIs(err, domain.ErrBeneficiaryNotFound)

	_, err = s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(int64(999)), BeneficiaryMatricule: emp.Matricule})
	s.ErrorIs(err, domain.ErrRequesterNotFound)

	_, err = s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: 999, BeneficiaryMatricule: emp.Matricule})
	s.ErrorIs(err, domain.ErrResourceNotFound)

	_, err = s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID})
	s.ErrorIs(err, domain.ErrValidation)

	_, err = s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, BeneficiaryMatricule: emp.Matricule, RequestDate: ptr("10/05/2024")})
	s.ErrorIs(err, domain.ErrValidation)

	s.Equal(domain.StateFree, s.resourceState(res.ID).State)
	var count int64
	s.Require().NoError(s.db.Model(&domain.Request{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ServiceSuite) TestCreateRequest_DisabledBeneficiary() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	_, err := s.employees.Disable(s.ctx, emp.Matricule)
	s.Require().NoError(err)

	_, err = s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, BeneficiaryMatricule: emp.Matricule})
	s.ErrorIs(err, domain.ErrEmployeeDisabled)
}

func (s *ServiceSuite) TestCreateRequest_NotificationFailureIsIsolated() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	requester := s.seedUser("recruit", domain.RoleRecruit)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	workflow := s.newWorkflowService(s.newNotificationService(failingNotificationRepo{s.repo.notifications}))

	req, err := workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{
		ResourceID:           res.ID,
		RequesterID:          ptr(requester.ID),
		BeneficiaryMatricule: emp.Matricule,
	})
	s.Require().NoError(err)
	s.Equal(domain.ValidationPending, req.Validation.Status)

	s.flush()
	s.Zero(s.totalNotifications())
	s.Equal(1, s.publisher.count(broadcast.EntityRequest, broadcast.ActionCreated))
	s.Equal(domain.StatePending, s.resourceState(res.ID).State)
}

func (s *ServiceSuite) TestCreateRequestsBulk_IndependentEntries() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	first := s.seedResource("Laptop", chief.ID)
	third := s.seedResource("Phone", chief.ID)

	results := s.workflow.CreateRequestsBulk(s.ctx, &dto.BulkCreateRequestsRequest{Entries: []dto.CreateRequestRequest{
		{ResourceID: first.ID, BeneficiaryMatricule: emp.Matricule},
		{ResourceID: 999, BeneficiaryMatricule: emp.Matricule},
		{ResourceID: third.ID, BeneficiaryMatricule: emp.Matricule},
	}})

	s.Require().Len(results, 3)
	s.Equal(dto.BulkStatusSuccess, results[0].Status)
	s.NotNil(results[0].RequestID)
	s.Equal(dto.BulkStatusError, results[1].Status)
	s.Equal(int64(999), results[1].ResourceID)
	s.Contains(results[1].Message, "resource not found")
	s.Nil(results[1].RequestID)
	s.Equal(dto.BulkStatusSuccess, results[2].Status)

	for _, idx := range []int{0, 2} {
		req, err := s.workflow.GetRequest(s.ctx, *results[idx].RequestID)
		s.Require().NoError(err)
		s.True(req.IsOpen)
	}
	s.Equal(domain.StatePending, s.resourceState(first.ID).State)
	s.Equal(domain.StatePending, s.resourceState(third.ID).State)
}

func (s *ServiceSuite) TestApprove_TwiceFailsWithInvalidState() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	requester := s.seedUser("recruit", domain.RoleRecruit)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(requester.ID), BeneficiaryMatricule: emp.Matricule})
	s.Require().NoError(err)

	val, err := s.workflow.Approve(s.ctx, req.Validation.ID, &dto.ApproveRequest{ValidatorID: chief.ID, DeliveryDate: ptr("2024-06-01")})
	s.Require().NoError(err)
	s.Equal(domain.ValidationApproved, val.Status)
	s.Require().NotNil(val.DeliveryDate)
	s.Equal("2024-06-01", val.DeliveryDate.Format("2006-01-02"))
	s.Nil(val.RejectionReason)

	held := s.resourceState(res.ID)
	s.Equal(domain.StateHeld, held.State)
	s.Require().NotNil(held.HolderMatricule)
	s.Equal(emp.Matricule, *held.HolderMatricule)

	_, err = s.workflow.Approve(s.ctx, req.Validation.ID, &dto.ApproveRequest{ValidatorID: chief.ID})
	s.ErrorIs(err, domain.ErrValidationNotPending)
	s.ErrorIs(err, domain.ErrInvalidState)

	stored, err := s.workflow.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.False(stored.IsOpen)
	s.Equal(domain.ValidationApproved, stored.Validation.Status)
	s.Equal("2024-06-01", stored.Validation.DeliveryDate.Format("2006-01-02"))
	s.Equal(domain.StateHeld, s.resourceState(res.ID).State)

	// Создание: руководитель и заявитель; одобрение: валидатор и заявитель
	s.flush()
	s.Equal(int64(2), s.notificationCount(chief.ID))
	s.Equal(int64(2), s.notificationCount(requester.ID))
}

func (s *ServiceSuite) TestApprove_UnknownValidation() {
	chief := s.seedUser("chief", domain.RoleUnitChief)

	_, err := s.workflow.Approve(s.ctx, 999, &dto.ApproveRequest{ValidatorID: chief.ID})
	s.ErrorIs(err, domain.ErrValidationNotFound)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *ServiceSuite) TestApprove_UnknownValidator() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, BeneficiaryMatricule: emp.Matricule})
	s.Require().NoError(err)

	_, err = s.workflow.Approve(s.ctx, req.Validation.ID, &dto.ApproveRequest{ValidatorID: 999})
	s.ErrorIs(err, domain.ErrValidatorNotFound)
	s.Equal(domain.StatePending, s.resourceState(res.ID).State)
}

func (s *ServiceSuite) TestReject_RequiresReasonAndFreesResource() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	requester := s.seedUser("recruit", domain.RoleRecruit)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	in := &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(requester.ID), BeneficiaryMatricule: emp.Matricule}
	req, err := s.workflow.CreateRequest(s.ctx, in)
	s.Require().NoError(err)

	_, err = s.workflow.Reject(s.ctx, req.Validation.ID, &dto.RejectRequest{ValidatorID: chief.ID, Reason: "   "})
	s.ErrorIs(err, domain.ErrRejectionReasonRequired)
	s.ErrorIs(err, domain.ErrValidation)
	s.Equal(domain.StatePending, s.resourceState(res.ID).State)

	val, err := s.workflow.Reject(s.ctx, req.Validation.ID, &dto.RejectRequest{ValidatorID: chief.ID, Reason: "budget frozen"})
	s.Require().NoError(err)
	s.Equal(domain.ValidationRejected, val.Status)
	s.Nil(val.DeliveryDate)
	s.NotNil(val.ValidationDate)
	s.Require().NotNil(val.RejectionReason)
	s.Equal("budget frozen", *val.RejectionReason)

	freed := s.resourceState(res.ID)
	s.Equal(domain.StateFree, freed.State)
	s.Nil(freed.HolderMatricule)

	stored, err := s.workflow.GetRequest(s.ctx, req.ID)
	s.Require().NoError(err)
	s.False(stored.IsOpen)
	s.Nil(stored.Validation.DeliveryDate)

	_, err = s.workflow.Approve(s.ctx, req.Validation.ID, &dto.ApproveRequest{ValidatorID: chief.ID})
	s.ErrorIs(err, domain.ErrValidationNotPending)

	// Отклонённый запрос не блокирует новый
	_, err = s.workflow.CreateRequest(s.ctx, in)
	s.NoError(err)
}

func (s *ServiceSuite) TestReject_SelfApprovedIsTerminal() {
	chief := s.seedUser("chief", domain.RoleUnitChief)
	emp := s.seedEmployee("Doe", "2024-02-01")
	res := s.seedResource("Laptop", chief.ID)

	req, err := s.workflow.CreateRequest(s.ctx, &dto.CreateRequestRequest{ResourceID: res.ID, RequesterID: ptr(chief.ID), BeneficiaryMatricule: emp.Matricule})
	s.Require().NoError(err)

	_, err = s.workflow.Reject(s.ctx, req.Validation.ID, &dto.RejectRequest{ValidatorID: chief.ID, Reason: "changed my mind"})
	s.ErrorIs(err, domain.ErrValidationNotPending)
	s.Equal(domain.StateHeld, s.resourceState(res.ID).State)
}
