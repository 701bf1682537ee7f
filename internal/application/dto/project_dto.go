package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectRequest alta/edición de proyecto.
type ProjectRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	CustomerID  string           `json:"customer_id,omitempty"`
	Status      string           `json:"status,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	OwnerID     string           `json:"owner_id,omitempty"`
	AssignedTo  string           `json:"assigned_to,omitempty"`
}

// ProjectResponse proyecto en respuestas.
type ProjectResponse struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	CustomerID  string          `json:"customer_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	OwnerID     string          `json:"owner_id,omitempty"`
	AssignedTo  string          `json:"assigned_to,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProjectListResponse lista paginada de proyectos.
type ProjectListResponse struct {
	Items []ProjectResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
