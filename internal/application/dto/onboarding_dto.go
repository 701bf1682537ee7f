package dto

import "time"

// CreateOrganizationRequest paso 1 del onboarding.
type CreateOrganizationRequest struct {
	Name string `json:"name"`
	Plan string `json:"plan,omitempty"`
}

// CreateOrganizationResponse resultado del paso 1.
type CreateOrganizationResponse struct {
	Organization  OrganizationResponse `json:"organization"`
	Membership    MembershipResponse   `json:"membership"`
	DefaultOrgSet bool                 `json:"default_org_set"`
}

// InviteRow fila del formulario de invitaciones (paso 2). Las filas sin email se ignoran.
type InviteRow struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// InviteMembersRequest paso 2 del onboarding / alta de invitaciones.
type InviteMembersRequest struct {
	Invites []InviteRow `json:"invites"`
}

// InviteResponse invitación persistida.
type InviteResponse struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"org_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	Role       string     `json:"role"`
	InvitedBy  string     `json:"invited_by"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
}

// InviteMembersResponse invitaciones creadas y filas descartadas por email vacío.
type InviteMembersResponse struct {
	Created []InviteResponse `json:"created"`
	Skipped int              `json:"skipped"`
}

// AcceptInviteRequest aceptación de una invitación por el usuario autenticado.
type AcceptInviteRequest struct {
	InviteID string `json:"invite_id"`
}

// OnboardingCompleteResponse paso 3: confirmación sin efectos en el backend.
type OnboardingCompleteResponse struct {
	OrgID          string `json:"org_id"`
	OrgName        string `json:"org_name"`
	Role           string `json:"role"`
	PendingInvites int    `json:"pending_invites"`
	Completed      bool   `json:"completed"`
	Next           string `json:"next"`
}
