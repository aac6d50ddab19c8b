package services

import (
	"github.com/docuflow/docuflow/internal/infrastructure/database/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller, resolved once from token claims.
// Employees and clients collapse into the same shape here; Role Client
// marks the clients table as the backing row.
type Actor struct {
	ID        uuid.UUID   `json:"id"`
	CompanyID uuid.UUID   `json:"company_id"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
}

// IsClient reports whether the actor resolved through the clients table.
func (a Actor) IsClient() bool {
	return a.Role.Is(models.RoleClient)
}

// PersonRef is a display reference to whoever touched a document.
type PersonRef struct {
	ID   uuid.UUID   `json:"id"`
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}
