package dto

import "time"

// MembershipResponse miembro del equipo (página de staff).
type MembershipResponse struct {
	ID             string     `json:"id"`
	OrgID          string     `json:"org_id"`
	UserID         string     `json:"user_id"`
	Role           string     `json:"role"`
	Department     string     `json:"department,omitempty"`
	JobTitle       string     `json:"job_title,omitempty"`
	IsActive       bool       `json:"is_active"`
	HiredDate      *time.Time `json:"hired_date,omitempty"`
	TerminatedDate *time.Time `json:"terminated_date,omitempty"`
	TerminatedBy   string     `json:"terminated_by,omitempty"`
	ReactivatedBy  string     `json:"reactivated_by,omitempty"`
}

// UpdateMembershipRequest cambio de rol y datos laborales (solo owner/admin).
type UpdateMembershipRequest struct {
	Role       string  `json:"role"`
	Department *string `json:"department"`
	JobTitle   *string `json:"job_title"`
}
