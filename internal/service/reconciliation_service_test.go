package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

func ledgerEntry(amount int64, date time.Time, debit, credit string) *models.JournalEntry {
	return &models.JournalEntry{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		EntryDate:     date,
		Description:   "test",
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        decimal.NewFromInt(amount),
		Currency:      "JPY",
	}
}

func draftEntry(amount int64, date time.Time, account string) *models.MfJournalEntry {
	amt := decimal.NewFromInt(amount)
	return &models.MfJournalEntry{
		ID:              uuid.New(),
		TransactionDate: date,
		TransactionType: models.DirectionExpense,
		ExpenseAmount:   &amt,
		AccountSubject:  account,
		AccountBook:     "普通預金",
		TaxCategory:     "課税仕入10%",
		Status:          models.JournalStatusDraft,
	}
}

func documentFile(amount *int64, date *time.Time) *models.ChatFile {
	f := &models.ChatFile{
		ID:            uuid.New(),
		FileName:      "receipt.pdf",
		Status:        models.FileStatusCompleted,
		ExtractedDate: date,
	}
	if amount != nil {
		amt := decimal.NewFromInt(*amount)
		f.ExtractedAmount = &amt
	}
	return f
}

func TestEvaluatePairMatched(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")
	draft := draftEntry(5000, date, "水道光熱費")

	status, note := evaluatePair(entry, draft, decimal.Zero, 3)
	if status != models.ReconciliationStatusMatched {
		t.Fatalf("status = %q, want matched (note: %v)", status, note)
	}
	if note != nil {
		t.Errorf("matched pair must not carry a note, got %q", *note)
	}
}

func TestEvaluatePairAmountDiscrepancy(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")
	draft := draftEntry(5500, date, "水道光熱費")

	status, note := evaluatePair(entry, draft, decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("status = %q, want discrepancy", status)
	}
	if note == nil || !strings.Contains(*note, "金額不一致") {
		t.Errorf("note must explain the amount mismatch, got %v", note)
	}
}

func TestEvaluatePairAmountWithinTolerance(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")
	draft := draftEntry(5008, date, "水道光熱費")

	status, _ := evaluatePair(entry, draft, decimal.NewFromInt(10), 3)
	if status != models.ReconciliationStatusMatched {
		t.Errorf("diff of 8 within tolerance 10 must match, got %q", status)
	}
}

func TestEvaluatePairDateWindow(t *testing.T) {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, base, "水道光熱費", "普通預金")

	inside := draftEntry(5000, base.AddDate(0, 0, 3), "水道光熱費")
	if status, _ := evaluatePair(entry, inside, decimal.Zero, 3); status != models.ReconciliationStatusMatched {
		t.Errorf("3 days inside the window must match, got %q", status)
	}

	outside := draftEntry(5000, base.AddDate(0, 0, 4), "水道光熱費")
	status, note := evaluatePair(entry, outside, decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("4 days outside the window must be a discrepancy, got %q", status)
	}
	if note == nil || !strings.Contains(*note, "日付乖離") {
		t.Errorf("note must explain the date drift, got %v", note)
	}
}

func TestEvaluatePairAccountMismatch(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, date, "通信費", "普通預金")
	draft := draftEntry(5000, date, "水道光熱費")

	status, note := evaluatePair(entry, draft, decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("status = %q, want discrepancy", status)
	}
	if note == nil || !strings.Contains(*note, "勘定科目不一致") {
		t.Errorf("note must explain the account mismatch, got %v", note)
	}
}

func TestEvaluatePairAccountOnCreditSide(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(120000, date, "普通預金", "売上高")
	draft := draftEntry(120000, date, "売上高")

	status, _ := evaluatePair(entry, draft, decimal.Zero, 3)
	if status != models.ReconciliationStatusMatched {
		t.Errorf("account on the credit side must match, got %q", status)
	}
}

// A reconciliation that links only a document must still be able to
// match: the ledger entry is compared against the extracted totals the
// pipeline cached on the file.
func TestEvaluateDocumentMatched(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := int64(5000)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")
	file := documentFile(&amount, &date)

	status, note := evaluateDocument(entry, file, decimal.Zero, 3)
	if status != models.ReconciliationStatusMatched {
		t.Fatalf("status = %q, want matched (note: %v)", status, note)
	}
	if note != nil {
		t.Errorf("matched document must not carry a note, got %q", *note)
	}
}

func TestEvaluateDocumentAmountDiscrepancy(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := int64(5500)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")
	file := documentFile(&amount, &date)

	status, note := evaluateDocument(entry, file, decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("status = %q, want discrepancy", status)
	}
	if note == nil || !strings.Contains(*note, "金額不一致") {
		t.Errorf("note must explain the amount mismatch, got %v", note)
	}
}

func TestEvaluateDocumentDateWindow(t *testing.T) {
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	amount := int64(5000)
	entry := ledgerEntry(5000, base, "水道光熱費", "普通預金")

	outside := base.AddDate(0, 0, 4)
	status, note := evaluateDocument(entry, documentFile(&amount, &outside), decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("4 days outside the window must be a discrepancy, got %q", status)
	}
	if note == nil || !strings.Contains(*note, "日付乖離") {
		t.Errorf("note must explain the date drift, got %v", note)
	}

	// A document with no extracted date skips the date check.
	status, _ = evaluateDocument(entry, documentFile(&amount, nil), decimal.Zero, 3)
	if status != models.ReconciliationStatusMatched {
		t.Errorf("dateless document within tolerance must match, got %q", status)
	}
}

func TestEvaluateDocumentNoExtractedAmount(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	entry := ledgerEntry(5000, date, "水道光熱費", "普通預金")

	status, note := evaluateDocument(entry, documentFile(nil, &date), decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("status = %q, want discrepancy", status)
	}
	if note == nil || !strings.Contains(*note, "抽出されていません") {
		t.Errorf("note must say the document has no extracted amount, got %v", note)
	}
}

func TestEvaluatePairCollectsAllProblems(t *testing.T) {
	entry := ledgerEntry(5000, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "通信費", "普通預金")
	draft := draftEntry(9999, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "水道光熱費")

	status, note := evaluatePair(entry, draft, decimal.Zero, 3)
	if status != models.ReconciliationStatusDiscrepancy {
		t.Fatalf("status = %q, want discrepancy", status)
	}
	if note == nil {
		t.Fatal("note missing")
	}
	for _, fragment := range []string{"金額不一致", "日付乖離", "勘定科目不一致"} {
		if !strings.Contains(*note, fragment) {
			t.Errorf("note %q missing %q", *note, fragment)
		}
	}
}
