package entity

import "time"

// Planes comerciales de una organización.
const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanBusiness   = "business"
	PlanEnterprise = "enterprise"
)

// Organization representa un tenant del CRM. OwnerID no cambia tras la creación.
type Organization struct {
	ID        string
	Name      string
	Plan      string // ver constantes Plan*
	OwnerID   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidPlan informa si p es uno de los planes conocidos.
func ValidPlan(p string) bool {
	switch p {
	case PlanFree, PlanPro, PlanBusiness, PlanEnterprise:
		return true
	}
	return false
}
