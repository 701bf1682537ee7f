package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un proyecto.
const (
	ProjectStatusPlanned   = "planned"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
)

// Project trabajo para un cliente. Un employee lo ve si es dueño o asignado.
type Project struct {
	ID          string
	OrgID       string
	CustomerID  string // opcional
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      decimal.Decimal
	OwnerID     string
	AssignedTo  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
