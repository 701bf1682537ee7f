package organization

import (
	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/domain/entity"
)

func toOrganizationResponse(o *entity.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        o.ID,
		Name:      o.Name,
		Plan:      o.Plan,
		OwnerID:   o.OwnerID,
		IsActive:  o.IsActive,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toMembershipResponse(m *entity.Membership) dto.MembershipResponse {
	return dto.MembershipResponse{
		ID:             m.ID,
		OrgID:          m.OrgID,
		UserID:         m.UserID,
		Role:           string(m.Role),
		Department:     m.Department,
		JobTitle:       m.JobTitle,
		IsActive:       m.IsActive,
		HiredDate:      m.HiredDate,
		TerminatedDate: m.TerminatedDate,
		TerminatedBy:   m.TerminatedBy,
		ReactivatedBy:  m.ReactivatedBy,
	}
}

func toInviteResponse(i *entity.Invite) dto.InviteResponse {
	return dto.InviteResponse{
		ID:         i.ID,
		OrgID:      i.OrgID,
		Email:      i.Email,
		Name:       i.Name,
		Role:       string(i.Role),
		InvitedBy:  i.InvitedBy,
		ExpiresAt:  i.ExpiresAt,
		AcceptedAt: i.AcceptedAt,
	}
}
