package service

import (
	"time"

	"keiriflow/internal/mfcsv"
	"keiriflow/internal/models"

	"github.com/google/uuid"
)

const (
	defaultAccountBook = "普通預金"
	defaultTagNames    = "AI自動仕訳"
)

// BuildMfJournalEntry derives a draft ledger entry from a completed
// prediction. Pure: no clock, no storage, so the mapping is testable in
// isolation. Entries start as drafts and only the export/import flow
// moves them forward.
func BuildMfJournalEntry(p *models.ClaudePrediction, now time.Time) *models.MfJournalEntry {
	entryDate := now
	if p.InputDate != nil {
		entryDate = *p.InputDate
	}

	account := p.PredictedAccount
	if p.MatchedAccountName != nil {
		account = *p.MatchedAccountName
	}
	if account == "" {
		account = p.InputDirection.FallbackAccount()
	}

	entry := &models.MfJournalEntry{
		ID:                 uuid.New(),
		TenantID:           p.TenantID,
		ClaudePredictionID: &p.ID,
		TransactionDate:    entryDate,
		TransactionType:    p.InputDirection,
		AccountSubject:     account,
		MatchedAccountID:   p.MatchedAccountID,
		MatchedAccountCode: p.MatchedAccountCode,
		MatchedVendorID:    p.MatchedVendorID,
		MatchedVendorCode:  p.MatchedVendorCode,
		AccountBook:        defaultAccountBook,
		TaxCategory:        p.InputDirection.DefaultTaxCategory(),
		TagNames:           defaultTagNames,
		Status:             models.JournalStatusDraft,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	amount := p.InputAmount.Abs()
	if p.InputDirection == models.DirectionIncome {
		entry.IncomeAmount = &amount
	} else {
		entry.ExpenseAmount = &amount
	}

	vendor := p.InputVendor
	if p.MatchedVendorName != nil {
		vendor = *p.MatchedVendorName
	}
	if vendor != "" {
		entry.Vendor = &vendor
	}
	if p.InputDescription != "" {
		description := p.InputDescription
		entry.Description = &description
	}

	reasoning := ""
	if p.Reasoning != nil {
		reasoning = *p.Reasoning
	}
	accountConfidence := p.AccountConfidence
	memo := mfcsv.BuildJournalMemo(reasoning, &accountConfidence, p.VendorConfidence)
	if memo != "" {
		entry.Memo = &memo
	}

	return entry
}
