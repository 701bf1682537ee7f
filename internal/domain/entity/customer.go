package entity

import "time"

// Estados de un cliente.
const (
	CustomerStatusLead     = "lead"
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
)

// Customer representa un cliente de la organización. OwnerID define el alcance
// por fila para el rol employee.
type Customer struct {
	ID          string
	OrgID       string
	Name        string
	Email       string
	Phone       string
	CompanyName string
	TaxID       string
	Address     string
	Status      string
	Notes       string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
