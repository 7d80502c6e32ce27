package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every PostgreSQL-backed repository over a shared pool.
type Repositories struct {
	Profiles *ProfileRepository
	Catalog  *CatalogRepository
	Grants   *GrantRepository
	Org      *OrgRepository
	Audit    *AuditRepository
	Accounts *AccountRepository
}

// NewRepositories wires all repositories to the given pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Profiles: NewProfileRepository(pool),
		Catalog:  NewCatalogRepository(pool),
		Grants:   NewGrantRepository(pool),
		Org:      NewOrgRepository(pool),
		Audit:    NewAuditRepository(pool),
		Accounts: NewAccountRepository(pool),
	}
}
