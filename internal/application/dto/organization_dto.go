package dto

import "time"

// OrganizationResponse organización (tenant).
type OrganizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	OwnerID   string    `json:"owner_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateOrganizationRequest cambio de nombre (manageSettings).
type UpdateOrganizationRequest struct {
	Name string `json:"name"`
}

// ChangePlanRequest cambio de plan (manageOrg).
type ChangePlanRequest struct {
	Plan string `json:"plan"`
}

// PermissionsResponse rol y capacidades del usuario en la organización actual.
type PermissionsResponse struct {
	OrgID        string          `json:"org_id"`
	Role         string          `json:"role"`
	Capabilities []string        `json:"capabilities"`
	Matrix       map[string]bool `json:"matrix"`
}
