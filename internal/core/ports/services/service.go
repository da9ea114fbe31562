package services

import (
	"context"
)

// Workspace is the mapping state of one workplace: its rows and its allocations.
type Workspace struct {
	WorkplaceID string
	Mappings    MappingSvcFacade
	Allocations AllocationSvcFacade
}

// WorkspaceSvc hands out per-workplace workspaces.
type WorkspaceSvc interface {
	// Workspace returns the workspace for the workplace, creating it on first use.
	Workspace(ctx context.Context, workplaceID string) (*Workspace, error)

	// RefreshCatalog reloads the standard chart of accounts and re-derives every row.
	// It returns the number of standard targets loaded.
	RefreshCatalog(ctx context.Context, workplaceID string) (int, error)
}

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Workspaces WorkspaceSvc
}
