package models

import "testing"

func TestFileStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to FileStatus
		want     bool
	}{
		{FileStatusPending, FileStatusProcessing, true},
		{FileStatusPending, FileStatusError, true},
		{FileStatusPending, FileStatusCompleted, false},
		{FileStatusProcessing, FileStatusCompleted, true},
		{FileStatusProcessing, FileStatusError, true},
		{FileStatusError, FileStatusProcessing, true},
		{FileStatusCompleted, FileStatusProcessing, false},
		{FileStatusCompleted, FileStatusError, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestJournalStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to JournalStatus
		want     bool
	}{
		{JournalStatusDraft, JournalStatusExported, true},
		{JournalStatusDraft, JournalStatusImported, false},
		{JournalStatusDraft, JournalStatusError, true},
		{JournalStatusExported, JournalStatusImported, true},
		{JournalStatusExported, JournalStatusDraft, false},
		{JournalStatusImported, JournalStatusExported, false},
		{JournalStatusImported, JournalStatusError, true},
		{JournalStatusError, JournalStatusDraft, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestReconciliationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ReconciliationStatus
		want     bool
	}{
		{ReconciliationStatusPending, ReconciliationStatusMatched, true},
		{ReconciliationStatusPending, ReconciliationStatusDiscrepancy, true},
		{ReconciliationStatusPending, ReconciliationStatusResolved, false},
		{ReconciliationStatusMatched, ReconciliationStatusDiscrepancy, true},
		{ReconciliationStatusDiscrepancy, ReconciliationStatusResolved, true},
		{ReconciliationStatusDiscrepancy, ReconciliationStatusMatched, false},
		{ReconciliationStatusResolved, ReconciliationStatusDiscrepancy, false},
		{ReconciliationStatusResolved, ReconciliationStatusMatched, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"income", DirectionIncome},
		{"expense", DirectionExpense},
		{"収入", DirectionIncome},
		{"支出", DirectionExpense},
		{"入金", DirectionIncome},
		{"出金", DirectionExpense},
		{"IN", DirectionIncome},
		{"", DirectionExpense},
		{"garbage", DirectionExpense},
	}
	for _, tt := range tests {
		if got := ParseDirection(tt.in); got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
