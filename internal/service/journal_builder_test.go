package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

func strPtr(s string) *string        { return &s }
func f64Ptr(f float64) *float64      { return &f }
func uuidPtr(u uuid.UUID) *uuid.UUID { return &u }

func completedPrediction() *models.ClaudePrediction {
	accountID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return &models.ClaudePrediction{
		ID:                 uuid.New(),
		TenantID:           uuid.New(),
		ChatFileID:         uuid.New(),
		InputVendor:        "東京電力",
		InputDescription:   "電気代",
		InputAmount:        decimal.NewFromInt(5000),
		InputDirection:     models.DirectionExpense,
		InputDate:          &date,
		PredictedAccount:   "水道光熱費",
		AccountConfidence:  0.87,
		Reasoning:          strPtr("電気料金の請求書"),
		MatchedAccountID:   uuidPtr(accountID),
		MatchedAccountCode: strPtr("5210"),
		MatchedAccountName: strPtr("水道光熱費"),
		VendorConfidence:   f64Ptr(0.65),
		Status:             models.PredictionStatusCompleted,
	}
}

func TestBuildMfJournalEntryExpense(t *testing.T) {
	p := completedPrediction()
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	entry := BuildMfJournalEntry(p, now)

	if entry.Status != models.JournalStatusDraft {
		t.Errorf("status = %q, want draft", entry.Status)
	}
	if !entry.TransactionDate.Equal(*p.InputDate) {
		t.Errorf("date = %v, want input date %v", entry.TransactionDate, *p.InputDate)
	}
	if entry.ExpenseAmount == nil || entry.IncomeAmount != nil {
		t.Fatalf("expense entry must set only expense_amount: income=%v expense=%v",
			entry.IncomeAmount, entry.ExpenseAmount)
	}
	if !entry.ExpenseAmount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expense amount = %s, want 5000", entry.ExpenseAmount)
	}
	if entry.AccountSubject != "水道光熱費" {
		t.Errorf("account = %q, want matched registry name", entry.AccountSubject)
	}
	if entry.TaxCategory != "課税仕入10%" {
		t.Errorf("tax category = %q, want 課税仕入10%%", entry.TaxCategory)
	}
	if entry.AccountBook != "普通預金" || entry.TagNames != "AI自動仕訳" {
		t.Errorf("defaults wrong: book=%q tags=%q", entry.AccountBook, entry.TagNames)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("built entry must satisfy the amount invariant: %v", err)
	}
	if entry.Memo == nil {
		t.Fatal("memo missing")
	}
	if want := "電気料金の請求書 (conf: acc=87%, vendor=65%)"; *entry.Memo != want {
		t.Errorf("memo = %q, want %q", *entry.Memo, want)
	}
}

func TestBuildMfJournalEntryIncome(t *testing.T) {
	p := completedPrediction()
	p.InputDirection = models.DirectionIncome
	p.PredictedAccount = "売上高"
	p.MatchedAccountName = strPtr("売上高")

	entry := BuildMfJournalEntry(p, time.Now())

	if entry.IncomeAmount == nil || entry.ExpenseAmount != nil {
		t.Fatalf("income entry must set only income_amount")
	}
	if entry.TaxCategory != "課税売上10%" {
		t.Errorf("tax category = %q, want 課税売上10%%", entry.TaxCategory)
	}
	if err := entry.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestBuildMfJournalEntryFallbackAccount(t *testing.T) {
	p := completedPrediction()
	p.PredictedAccount = ""
	p.MatchedAccountID = nil
	p.MatchedAccountCode = nil
	p.MatchedAccountName = nil

	entry := BuildMfJournalEntry(p, time.Now())
	if entry.AccountSubject != "雑費" {
		t.Errorf("account = %q, want fallback 雑費", entry.AccountSubject)
	}
}

func TestBuildMfJournalEntryNoDateUsesNow(t *testing.T) {
	p := completedPrediction()
	p.InputDate = nil
	now := time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC)

	entry := BuildMfJournalEntry(p, now)
	if !entry.TransactionDate.Equal(now) {
		t.Errorf("date = %v, want now %v", entry.TransactionDate, now)
	}
}

func TestBuildMfJournalEntryNegativeAmountNormalized(t *testing.T) {
	p := completedPrediction()
	p.InputAmount = decimal.NewFromInt(-2500)

	entry := BuildMfJournalEntry(p, time.Now())
	if entry.ExpenseAmount == nil || !entry.ExpenseAmount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("amount = %v, want normalized 2500", entry.ExpenseAmount)
	}
}
