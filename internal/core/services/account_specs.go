package services

import (
	"fmt"
	"strings"

	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/dto"
)

// defaultCurrencyCode is the currency assigned to provisioned accounts.
const defaultCurrencyCode = "USD"

// Canonical resolver specs for the accounts the posting flows depend on.
// Keeping them in one place means every flow lands on the same rows.

func cashAccountSpec() dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "treasury",
		Category:    "cash",
		AccountType: domain.Asset,
		DefaultCode: "1000",
		DefaultName: "Cash",
	}
}

func inventoryAssetSpec() dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "inventory",
		Category:    "stock",
		AccountType: domain.Asset,
		DefaultCode: "1200",
		DefaultName: "Inventory",
	}
}

func salesRevenueSpec() dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "sales",
		Category:    "sales_revenue",
		AccountType: domain.Revenue,
		DefaultCode: "4000",
		DefaultName: "Sales Revenue",
	}
}

func cogsSpec() dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "inventory",
		Category:    "cogs",
		AccountType: domain.Expense,
		DefaultCode: "5000",
		DefaultName: "Cost of Goods Sold",
	}
}

func shrinkageSpec() dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "inventory",
		Category:    "shrinkage",
		AccountType: domain.Expense,
		DefaultCode: "5900",
		DefaultName: "Inventory Shrinkage",
	}
}

func revenueCategorySpec(category string) dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "revenue",
		Category:    category,
		AccountType: domain.Revenue,
		DefaultCode: fmt.Sprintf("REV-%s", strings.ToUpper(category)),
		DefaultName: fmt.Sprintf("Revenue - %s", category),
	}
}

func expenseCategorySpec(category string) dto.ResolveAccountSpec {
	return dto.ResolveAccountSpec{
		Module:      "expense",
		Category:    category,
		AccountType: domain.Expense,
		DefaultCode: fmt.Sprintf("EXP-%s", strings.ToUpper(category)),
		DefaultName: fmt.Sprintf("Expense - %s", category),
	}
}
