package repositories

import (
	"github.com/blogem/corpdata-hub/database"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Items ItemRepository
	Audit AuditRepository
}

// NewRepositories creates all repositories on the shared store handle
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Items: NewItemRepository(db),
		Audit: NewAuditRepository(db),
	}
}
