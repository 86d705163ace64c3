package services

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	portssvc "github.com/fintrak/fintrak/internal/core/ports/services"
)

// ContainerOptions carries the policy knobs the services need beyond their
// repositories.
type ContainerOptions struct {
	// ChartAutoProvision lets the resolver create accounts for unmapped
	// categories on first use.
	ChartAutoProvision bool

	// ApprovalFloorRole is the rank at or above which a user may decide any
	// workflow regardless of the requester's management chain.
	ApprovalFloorRole domain.Role

	// DecidePolicies overrides the per-source-type decision carve-outs.
	// Nil means DefaultDecidePolicies.
	DecidePolicies map[domain.SourceType]DecidePolicy

	// Publisher receives best-effort domain events. May be nil.
	Publisher portssvc.EventPublisher
}

// NewServiceContainer wires the full service graph from the repository
// provider.
func NewServiceContainer(repos *portsrepo.RepositoryProvider, opts ContainerOptions) *portssvc.ServiceContainer {
	if opts.ApprovalFloorRole == 0 {
		opts.ApprovalFloorRole = domain.RoleManager
	}

	chartSvc := NewChartService(repos.AccountRepo, opts.ChartAutoProvision, opts.Publisher)
	journalSvc := NewJournalService(repos.JournalRepo, repos.AccountRepo, opts.Publisher)
	saleSvc := NewSaleService(repos.SaleRepo, repos.InventoryRepo, chartSvc, journalSvc, opts.Publisher)
	invSvc := NewInventoryService(repos.InventoryRepo, chartSvc, journalSvc, opts.Publisher)
	approvalSvc := NewApprovalService(
		repos.ApprovalRepo,
		repos.SourceRepo,
		repos.SaleRepo,
		repos.UserRepo,
		chartSvc,
		journalSvc,
		saleSvc,
		opts.DecidePolicies,
		opts.ApprovalFloorRole,
		opts.Publisher,
	)

	return &portssvc.ServiceContainer{
		ChartSvc:    chartSvc,
		JournalSvc:  journalSvc,
		ApprovalSvc: approvalSvc,
		SaleSvc:     saleSvc,
		InvSvc:      invSvc,
	}
}
