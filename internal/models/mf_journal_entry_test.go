package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func draftMfEntry() *MfJournalEntry {
	amount := decimal.NewFromInt(5000)
	return &MfJournalEntry{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		TransactionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TransactionType: DirectionExpense,
		ExpenseAmount:   &amount,
		AccountSubject:  "水道光熱費",
		AccountBook:     "普通預金",
		TaxCategory:     "課税仕入10%",
		Status:          JournalStatusDraft,
	}
}

func TestValidateAmountExclusive(t *testing.T) {
	e := draftMfEntry()
	if err := e.Validate(); err != nil {
		t.Fatalf("one-sided entry must be valid: %v", err)
	}

	amount := decimal.NewFromInt(100)
	e.IncomeAmount = &amount
	if err := e.Validate(); !errors.Is(err, ErrAmountExclusive) {
		t.Errorf("both sides set: err = %v, want ErrAmountExclusive", err)
	}

	e.IncomeAmount = nil
	e.ExpenseAmount = nil
	if err := e.Validate(); !errors.Is(err, ErrAmountExclusive) {
		t.Errorf("no side set: err = %v, want ErrAmountExclusive", err)
	}
}

func TestMarkExported(t *testing.T) {
	e := draftMfEntry()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	if changed := e.MarkExported(now, false); !changed {
		t.Fatal("first export must change the entry")
	}
	if !e.CsvExported || e.CsvExportedAt == nil || !e.CsvExportedAt.Equal(now) {
		t.Fatalf("export state wrong: %+v", e)
	}
	if e.Status != JournalStatusExported {
		t.Errorf("status = %q, want exported", e.Status)
	}

	later := now.Add(time.Hour)
	if changed := e.MarkExported(later, false); changed {
		t.Error("re-export without force must be a no-op")
	}
	if !e.CsvExportedAt.Equal(now) {
		t.Errorf("re-export must keep the first timestamp, got %v", e.CsvExportedAt)
	}

	e.MarkExported(later, true)
	if !e.CsvExportedAt.Equal(now) {
		t.Errorf("forced re-export must still keep the first timestamp, got %v", e.CsvExportedAt)
	}
}

func TestConfirmImportRequiresExport(t *testing.T) {
	e := draftMfEntry()
	err := e.ConfirmImport("MF-123", time.Now())
	if !errors.Is(err, ErrExportSequence) {
		t.Fatalf("err = %v, want ErrExportSequence", err)
	}
	if e.MfImported || e.MfJournalID != nil || e.Status != JournalStatusDraft {
		t.Errorf("failed confirmation must leave the entry unchanged: %+v", e)
	}
}

func TestConfirmImport(t *testing.T) {
	e := draftMfEntry()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	e.MarkExported(now, false)

	confirmAt := now.Add(time.Hour)
	if err := e.ConfirmImport("MF-123", confirmAt); err != nil {
		t.Fatalf("ConfirmImport: %v", err)
	}
	if !e.MfImported || e.MfJournalID == nil || *e.MfJournalID != "MF-123" {
		t.Fatalf("import state wrong: %+v", e)
	}
	if e.Status != JournalStatusImported {
		t.Errorf("status = %q, want imported", e.Status)
	}

	// Same id again is idempotent.
	if err := e.ConfirmImport("MF-123", confirmAt.Add(time.Hour)); err != nil {
		t.Errorf("re-confirming the same id must succeed: %v", err)
	}
	if !e.MfImportedAt.Equal(confirmAt) {
		t.Errorf("re-confirmation must keep the first timestamp, got %v", e.MfImportedAt)
	}

	// A different id is a conflict.
	if err := e.ConfirmImport("MF-999", confirmAt); !errors.Is(err, ErrImportConflict) {
		t.Errorf("err = %v, want ErrImportConflict", err)
	}
}

func TestConfirmImportEmptyID(t *testing.T) {
	e := draftMfEntry()
	e.MarkExported(time.Now(), false)
	if err := e.ConfirmImport("", time.Now()); !errors.Is(err, ErrEmptyExternalID) {
		t.Errorf("err = %v, want ErrEmptyExternalID", err)
	}
}

func TestAmount(t *testing.T) {
	e := draftMfEntry()
	if !e.Amount().Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Amount() = %s, want 5000", e.Amount())
	}

	income := decimal.NewFromInt(700)
	e.ExpenseAmount = nil
	e.IncomeAmount = &income
	if !e.Amount().Equal(income) {
		t.Errorf("Amount() = %s, want 700", e.Amount())
	}
}
