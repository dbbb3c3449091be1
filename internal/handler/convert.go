package handler

import (
	"github.com/resource-request-api/internal/domain"
	"github.com/resource-request-api/internal/dto"
)

const dateLayout = "2006-01-02"

func toUnitResponse(unit *domain.Unit, includePositions bool) dto.UnitResponse {
	resp := dto.UnitResponse{
		ID:        unit.ID,
		ParentID:  unit.ParentID,
		Type:      unit.Type,
		Title:     unit.Title,
		CreatedAt: unit.CreatedAt,
	}

	if includePositions && len(unit.Positions) > 0 {
		resp.Positions = make([]dto.PositionResponse, len(unit.Positions))
		for i := range unit.Positions {
			resp.Positions[i] = toPositionResponse(&unit.Positions[i])
		}
	}

	if len(unit.Children) > 0 {
		resp.Children = make([]dto.UnitResponse, len(unit.Children))
		for i := range unit.Children {
			resp.Children[i] = toUnitResponse(&unit.Children[i], includePositions)
		}
	}

	return resp
}

func toPositionResponse(pos *domain.Position) dto.PositionResponse {
	return dto.PositionResponse{
		ID:          pos.ID,
		UnitID:      pos.UnitID,
		Title:       pos.Title,
		IsAvailable: pos.IsAvailable,
		CreatedAt:   pos.CreatedAt,
	}
}

func toEmployeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		Matricule:         emp.Matricule,
		Name:              emp.Name,
		FirstName:         emp.FirstName,
		IsEquipped:        emp.IsEquipped,
		Status:            string(emp.Status),
		EntryDate:         emp.EntryDate.Format(dateLayout),
		PositionID:        emp.PositionID,
		SuperiorMatricule: emp.SuperiorMatricule,
		UserID:            emp.UserID,
		CreatedAt:         emp.CreatedAt,
	}
}

func toUserResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		Matricule:  user.Matricule,
		IsActive:   user.IsActive,
		SuperiorID: user.SuperiorID,
		CreatedAt:  user.CreatedAt,
	}
}

func toResourceResponse(res *domain.Resource) dto.ResourceResponse {
	return dto.ResourceResponse{
		ID:              res.ID,
		Label:           res.Label,
		Category:        res.Category,
		Description:     res.Description,
		State:           string(res.State),
		HolderMatricule: res.HolderMatricule,
		AttributionDate: res.AttributionDate,
		ChiefID:         res.ChiefID,
	}
}

func toValidationResponse(val *domain.Validation) dto.ValidationResponse {
	return dto.ValidationResponse{
		ID:              val.ID,
		RequestID:       val.RequestID,
		ValidatorID:     val.ValidatorID,
		Status:          string(val.Status),
		ValidationDate:  val.ValidationDate,
		DeliveryDate:    val.DeliveryDate,
		RejectionReason: val.RejectionReason,
	}
}

func toRequestResponse(req *domain.Request) dto.RequestResponse {
	resp := dto.RequestResponse{
		ID:                   req.ID,
		RequesterID:          req.RequesterID,
		BeneficiaryMatricule: req.BeneficiaryMatricule,
		ResourceID:           req.ResourceID,
		ReceiverID:           req.ReceiverID,
		RequestDate:          req.RequestDate.Format(dateLayout),
		IsOpen:               req.IsOpen,
	}

	if req.Validation != nil {
		val := toValidationResponse(req.Validation)
		resp.Validation = &val
	}
	return resp
}

func toNotificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		EventType: n.EventType,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
