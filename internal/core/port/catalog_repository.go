package port

import (
	"context"

	"github.com/atelierhq/crm-access/internal/core/domain"
)

// CatalogRepository reads the permission catalog and its role, department, and
// team bindings. All reads filter on active status.
type CatalogRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Permission, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]domain.Permission, error)
	ListByTeams(ctx context.Context, teamIDs []string) ([]domain.Permission, error)
}
