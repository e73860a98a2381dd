package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrExportSequence rejects an import confirmation for an entry
	// that was never exported.
	ErrExportSequence = errors.New("import confirmation requires a prior export")

	// ErrAmountExclusive enforces the income-xor-expense invariant.
	ErrAmountExclusive = errors.New("exactly one of income_amount and expense_amount must be set")

	// ErrImportConflict rejects a confirmation carrying a different
	// external id than the one already recorded.
	ErrImportConflict = errors.New("entry already imported under a different mf_journal_id")

	ErrEmptyExternalID = errors.New("mf_journal_id is required")
)

// MfJournalEntry is a draft ledger entry in MF Cloud 仕訳帳 terms.
// Lifecycle: draft -> exported (CSV written) -> imported (external
// system confirmed receipt and assigned MfJournalID). Error is
// reachable from any state.
type MfJournalEntry struct {
	ID                 uuid.UUID        `db:"id"`
	TenantID           uuid.UUID        `db:"tenant_id"`
	ClaudePredictionID *uuid.UUID       `db:"claude_prediction_id"`
	TransactionDate    time.Time        `db:"transaction_date"`
	TransactionType    Direction        `db:"transaction_type"`
	IncomeAmount       *decimal.Decimal `db:"income_amount"`
	ExpenseAmount      *decimal.Decimal `db:"expense_amount"`
	AccountSubject     string           `db:"account_subject"`
	MatchedAccountID   *uuid.UUID       `db:"matched_account_id"`
	MatchedAccountCode *string          `db:"matched_account_code"`
	Vendor             *string          `db:"vendor"`
	MatchedVendorID    *uuid.UUID       `db:"matched_vendor_id"`
	MatchedVendorCode  *string          `db:"matched_vendor_code"`
	Description        *string          `db:"description"`
	AccountBook        string           `db:"account_book"`
	TaxCategory        string           `db:"tax_category"`
	Memo               *string          `db:"memo"`
	TagNames           string           `db:"tag_names"`
	CsvExported        bool             `db:"csv_exported"`
	CsvExportedAt      *time.Time       `db:"csv_exported_at"`
	MfImported         bool             `db:"mf_imported"`
	MfImportedAt       *time.Time       `db:"mf_imported_at"`
	MfJournalID        *string          `db:"mf_journal_id"`
	Status             JournalStatus    `db:"status"`
	ErrorMessage       *string          `db:"error_message"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// Amount returns whichever of the two amount columns is set.
func (e *MfJournalEntry) Amount() decimal.Decimal {
	if e.IncomeAmount != nil {
		return *e.IncomeAmount
	}
	if e.ExpenseAmount != nil {
		return *e.ExpenseAmount
	}
	return decimal.Zero
}

// Validate checks the income-xor-expense invariant.
func (e *MfJournalEntry) Validate() error {
	if (e.IncomeAmount == nil) == (e.ExpenseAmount == nil) {
		return ErrAmountExclusive
	}
	return nil
}

// MarkExported flags the entry as written to a CSV export. Re-export
// of an already exported entry is a no-op unless forced; the original
// export timestamp is kept either way. Returns whether the entry
// changed.
func (e *MfJournalEntry) MarkExported(now time.Time, force bool) bool {
	if e.CsvExported && !force {
		return false
	}
	changed := !e.CsvExported
	e.CsvExported = true
	if e.CsvExportedAt == nil {
		e.CsvExportedAt = &now
	}
	if e.Status.CanTransition(JournalStatusExported) {
		e.Status = JournalStatusExported
		changed = true
	}
	return changed || force
}

// ConfirmImport is the only path that may set MfImported. It fails
// with ErrExportSequence when the entry was never exported, leaving
// the entry unchanged, and is idempotent when re-confirmed with the
// same external id.
func (e *MfJournalEntry) ConfirmImport(externalID string, now time.Time) error {
	if externalID == "" {
		return ErrEmptyExternalID
	}
	if e.MfImported {
		if e.MfJournalID != nil && *e.MfJournalID == externalID {
			return nil
		}
		return ErrImportConflict
	}
	if !e.CsvExported {
		return ErrExportSequence
	}
	if !e.Status.CanTransition(JournalStatusImported) {
		return ErrIllegalTransition
	}
	e.MfImported = true
	e.MfImportedAt = &now
	e.MfJournalID = &externalID
	e.Status = JournalStatusImported
	return nil
}
