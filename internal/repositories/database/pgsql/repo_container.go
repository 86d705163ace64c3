package pgsql

import (
	portsrepo "github.com/fintrak/fintrak/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	approvalRepo := newPgxApprovalRepository(dbPool)
	sourceRepo := newPgxSourceRepository(dbPool)
	saleRepo := newPgxSaleRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:   accountRepo,
		JournalRepo:   journalRepo,
		ApprovalRepo:  approvalRepo,
		SourceRepo:    sourceRepo,
		SaleRepo:      saleRepo,
		InventoryRepo: inventoryRepo,
		UserRepo:      userRepo,
	}
}
