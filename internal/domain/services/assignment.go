package services

import "github.com/docuflow/docuflow/internal/infrastructure/database/models"

// NextRole returns the role a document should be handed to next, based on
// who is passing it on. The pipeline is scan -> index -> QA; QA hands off
// to nobody.
func NextRole(actorRole models.Role) (models.Role, bool) {
	switch {
	case actorRole.IsAny(models.RoleOwner, models.RoleManager, models.RoleScanner, models.RoleClient):
		return models.RoleIndexer, true
	case actorRole.Is(models.RoleIndexer):
		return models.RoleQA, true
	default:
		return "", false
	}
}
