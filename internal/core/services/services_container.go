package services

import (
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
	"github.com/SscSPs/ledger_mapping_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Workspaces = NewWorkspaceService(
		repos.MappingRepo,
		repos.CatalogRepo,
		WorkspaceSettings{
			SaveWarnThreshold: cfg.MappingSaveWarnThreshold,
			SaveHardLimit:     cfg.MappingSaveHardLimit,
			RoundingPlaces:    cfg.AllocationRoundingPlaces,
		},
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.MappingSvcFacade    = (*MappingEngine)(nil)
	_ portssvc.AllocationSvcFacade = (*AllocationEngine)(nil)
	_ portssvc.WorkspaceSvc        = (*workspaceService)(nil)
)
