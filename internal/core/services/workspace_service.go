package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_mapping_app/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_mapping_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_mapping_app/internal/core/ports/services"
)

// WorkspaceSettings tunes the engines created for each workplace.
type WorkspaceSettings struct {
	SaveWarnThreshold int
	SaveHardLimit     int
	RoundingPlaces    int32
}

// workspaceService lazily creates one mapping engine and one allocation
// engine per workplace.
type workspaceService struct {
	BaseService
	mappingRepo portsrepo.MappingWriter
	catalogRepo portsrepo.CatalogReader
	settings    WorkspaceSettings

	mu         sync.Mutex
	workspaces map[string]*portssvc.Workspace
}

// NewWorkspaceService creates the workspace registry.
func NewWorkspaceService(mappingRepo portsrepo.MappingWriter, catalogRepo portsrepo.CatalogReader, settings WorkspaceSettings) portssvc.WorkspaceSvc {
	return &workspaceService{
		mappingRepo: mappingRepo,
		catalogRepo: catalogRepo,
		settings:    settings,
		workspaces:  make(map[string]*portssvc.Workspace),
	}
}

func (s *workspaceService) Workspace(ctx context.Context, workplaceID string) (*portssvc.Workspace, error) {
	if workplaceID == "" {
		return nil, validationf("workplace id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[workplaceID]; ok {
		return ws, nil
	}

	catalog, err := s.loadCatalog(ctx, workplaceID)
	if err != nil {
		return nil, err
	}
	allocations := NewAllocationEngine(WithRoundingPlaces(s.settings.RoundingPlaces))
	mappings := NewMappingEngine(workplaceID, s.mappingRepo,
		WithCatalog(catalog),
		WithAllocationReader(allocations),
		WithSaveThresholds(s.settings.SaveWarnThreshold, s.settings.SaveHardLimit),
	)
	ws := &portssvc.Workspace{WorkplaceID: workplaceID, Mappings: mappings, Allocations: allocations}
	s.workspaces[workplaceID] = ws

	s.LogInfo(ctx, "Workspace created",
		slog.String("workplace_id", workplaceID),
		slog.Int("catalog_entries", catalog.Len()))
	return ws, nil
}

func (s *workspaceService) RefreshCatalog(ctx context.Context, workplaceID string) (int, error) {
	ws, err := s.Workspace(ctx, workplaceID)
	if err != nil {
		return 0, err
	}
	targets, err := s.listTargets(ctx, workplaceID)
	if err != nil {
		return 0, err
	}
	ws.Mappings.RefreshCatalog(ctx, domain.NewStandardCatalog(targets))
	return len(targets), nil
}

func (s *workspaceService) loadCatalog(ctx context.Context, workplaceID string) (*domain.StandardCatalog, error) {
	targets, err := s.listTargets(ctx, workplaceID)
	if err != nil {
		return nil, err
	}
	return domain.NewStandardCatalog(targets), nil
}

func (s *workspaceService) listTargets(ctx context.Context, workplaceID string) ([]domain.StandardTarget, error) {
	if s.catalogRepo == nil {
		return nil, nil
	}
	targets, err := s.catalogRepo.ListStandardTargets(ctx, workplaceID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load standard targets", slog.String("workplace_id", workplaceID))
		return nil, fmt.Errorf("loading standard targets for workplace %s: %w", workplaceID, err)
	}
	return targets, nil
}
