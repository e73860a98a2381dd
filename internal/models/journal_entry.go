package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JournalEntry is the authoritative double-entry record used by
// reconciliation. Entries are created independently of predictions
// (bank feed, manual input) or derived from one.
type JournalEntry struct {
	ID            uuid.UUID       `db:"id"`
	TenantID      uuid.UUID       `db:"tenant_id"`
	EntryDate     time.Time       `db:"entry_date"`
	Description   string          `db:"description"`
	DebitAccount  string          `db:"debit_account"`
	CreditAccount string          `db:"credit_account"`
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	Reference     *string         `db:"reference"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Reconciliation asserts that a document's derived entry agrees with a
// ledger entry. Rows are never deleted; history lives in the status.
type Reconciliation struct {
	ID               uuid.UUID            `db:"id"`
	TenantID         uuid.UUID            `db:"tenant_id"`
	ChatFileID       *uuid.UUID           `db:"chat_file_id"`
	JournalEntryID   uuid.UUID            `db:"journal_entry_id"`
	MfJournalEntryID *uuid.UUID           `db:"mf_journal_entry_id"`
	Status           ReconciliationStatus `db:"status"`
	Notes            *string              `db:"notes"`
	CreatedAt        time.Time            `db:"created_at"`
	UpdatedAt        time.Time            `db:"updated_at"`
}
