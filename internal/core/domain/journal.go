package domain

import (
	"fmt"
	"time"
)

// EntryStatus indicates the state of a journal entry.
// Transitions: DRAFT -> POSTED -> REVERSED. Reversed and Draft are terminal
// with respect to posting; there is no path back to POSTED.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// ReferenceType identifies the kind of source document a journal entry
// was posted for.
type ReferenceType string

const (
	RefRevenue        ReferenceType = "REVENUE"
	RefExpense        ReferenceType = "EXPENSE"
	RefSale           ReferenceType = "SALE"
	RefInventory      ReferenceType = "INVENTORY"
	RefManual         ReferenceType = "MANUAL"
	RefOpeningBalance ReferenceType = "OPENING_BALANCE"
	RefAdjustment     ReferenceType = "ADJUSTMENT"
)

// EntryReference is a tagged link from a journal entry to the document that
// caused it. Document-backed references carry an ID; MANUAL, OPENING_BALANCE
// and ADJUSTMENT do not.
type EntryReference struct {
	Type ReferenceType `json:"type"`
	ID   *string       `json:"id,omitempty"`
}

// RevenueRef references a revenue entry.
func RevenueRef(id string) EntryReference {
	return EntryReference{Type: RefRevenue, ID: &id}
}

// ExpenseRef references an expense entry.
func ExpenseRef(id string) EntryReference {
	return EntryReference{Type: RefExpense, ID: &id}
}

// SaleRef references a sale.
func SaleRef(id string) EntryReference {
	return EntryReference{Type: RefSale, ID: &id}
}

// InventoryRef references an inventory item (shrinkage, adjustments).
func InventoryRef(id string) EntryReference {
	return EntryReference{Type: RefInventory, ID: &id}
}

// ManualRef is an entry keyed in by hand with no source document.
func ManualRef() EntryReference {
	return EntryReference{Type: RefManual}
}

// OpeningBalanceRef marks an opening-balance entry.
func OpeningBalanceRef() EntryReference {
	return EntryReference{Type: RefOpeningBalance}
}

// AdjustmentRef marks a correcting adjustment with no source document.
func AdjustmentRef() EntryReference {
	return EntryReference{Type: RefAdjustment}
}

// Validate checks that the reference tag and the presence of an ID agree.
func (r EntryReference) Validate() error {
	switch r.Type {
	case RefRevenue, RefExpense, RefSale, RefInventory:
		if r.ID == nil || *r.ID == "" {
			return fmt.Errorf("reference type %s requires a document ID", r.Type)
		}
		return nil
	case RefManual, RefOpeningBalance, RefAdjustment:
		if r.ID != nil {
			return fmt.Errorf("reference type %s must not carry a document ID", r.Type)
		}
		return nil
	default:
		return fmt.Errorf("unknown reference type %q", r.Type)
	}
}

// JournalEntry is a single, balanced financial event composed of multiple
// lines. Once POSTED it is immutable except for the reversal transition.
type JournalEntry struct {
	EntryID         string         `json:"entryID"`     // Primary Key (UUID)
	EntryNumber     string         `json:"entryNumber"` // Unique human-readable number, e.g. "JE-000042"
	EntryDate       time.Time      `json:"entryDate"`   // Date the event occurred
	Description     string         `json:"description"`
	Reference       EntryReference `json:"reference"`
	Status          EntryStatus    `json:"status"`
	PostedAt        *time.Time     `json:"postedAt,omitempty"`
	PostedBy        *string        `json:"postedBy,omitempty"`
	ReversedAt      *time.Time     `json:"reversedAt,omitempty"`
	ReversedBy      *string        `json:"reversedBy,omitempty"`
	ReversalEntryID *string        `json:"reversalEntryID,omitempty"` // Set on both sides of a reversal pair
	Lines           []JournalLine  `json:"lines,omitempty"`           // Often loaded separately
	AuditFields
}

// IsPosted reports whether the entry is financially effective.
func (e *JournalEntry) IsPosted() bool {
	return e.Status == Posted
}
