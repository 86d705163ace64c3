package services

// ServiceContainer aggregates the service facades handed to the transport
// layer.
type ServiceContainer struct {
	ChartSvc    ChartSvcFacade
	JournalSvc  JournalSvcFacade
	ApprovalSvc ApprovalSvcFacade
	SaleSvc     SaleSvcFacade
	InvSvc      InventorySvcFacade
}
