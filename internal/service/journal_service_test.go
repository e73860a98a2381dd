package service

import (
	"testing"
	"time"

	"keiriflow/internal/models"
)

func TestSelectExportableSkipsExported(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	draft := draftEntry(5000, date, "水道光熱費")
	exported := draftEntry(3000, date, "通信費")
	exported.MarkExported(date, false)

	selected := selectExportable([]*models.MfJournalEntry{draft, exported}, time.Now(), false)
	if len(selected) != 1 || selected[0] != draft {
		t.Fatalf("re-selecting an exported entry must be a no-op, got %d entries", len(selected))
	}
	if draft.Status != models.JournalStatusExported {
		t.Errorf("selected draft must be marked exported, got %q", draft.Status)
	}
}

func TestSelectExportableForce(t *testing.T) {
	firstExport := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	exported := draftEntry(3000, firstExport, "通信費")
	exported.MarkExported(firstExport, false)

	selected := selectExportable([]*models.MfJournalEntry{exported}, firstExport.AddDate(0, 0, 7), true)
	if len(selected) != 1 {
		t.Fatalf("force must re-export, got %d entries", len(selected))
	}
	if exported.CsvExportedAt == nil || !exported.CsvExportedAt.Equal(firstExport) {
		t.Errorf("forced re-export must keep the first timestamp, got %v", exported.CsvExportedAt)
	}
}

func TestSelectExportableSkipsErrored(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	errored := draftEntry(5000, date, "水道光熱費")
	errored.Status = models.JournalStatusError

	if selected := selectExportable([]*models.MfJournalEntry{errored}, time.Now(), true); len(selected) != 0 {
		t.Errorf("errored entries must never export, got %d entries", len(selected))
	}
}
