package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

func completedRow(amount int64, date *time.Time) *models.ClaudePrediction {
	return &models.ClaudePrediction{
		ID:             uuid.New(),
		InputAmount:    decimal.NewFromInt(amount),
		InputDirection: models.DirectionExpense,
		InputDate:      date,
		Status:         models.PredictionStatusCompleted,
	}
}

func errorRow() *models.ClaudePrediction {
	message := "item 0: invalid amount"
	return &models.ClaudePrediction{
		ID:           uuid.New(),
		Status:       models.PredictionStatusError,
		ErrorMessage: &message,
	}
}

func TestSummarizePredictions(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan25 := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)

	amount, earliest, ok := summarizePredictions([]*models.ClaudePrediction{
		completedRow(3000, &jan25),
		completedRow(2000, &jan10),
		errorRow(),
	})
	if !ok {
		t.Fatal("batch with completed rows must summarize")
	}
	if !amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("amount = %s, want 5000 (error rows excluded)", amount)
	}
	if earliest == nil || !earliest.Equal(jan10) {
		t.Errorf("earliest = %v, want %v", earliest, jan10)
	}
}

// A batch with no completed row must not let the file complete: an
// empty model response or an all-malformed batch leaves nothing to
// draft a journal entry from.
func TestSummarizePredictionsNoCompletedRows(t *testing.T) {
	for _, tt := range []struct {
		name string
		rows []*models.ClaudePrediction
	}{
		{"empty batch", nil},
		{"all malformed", []*models.ClaudePrediction{errorRow(), errorRow()}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			amount, earliest, ok := summarizePredictions(tt.rows)
			if ok {
				t.Fatal("batch without completed rows must not summarize")
			}
			if amount != nil || earliest != nil {
				t.Errorf("got amount=%v earliest=%v, want nil", amount, earliest)
			}
		})
	}
}

func TestBatchFailureMessage(t *testing.T) {
	if msg := batchFailureMessage(nil); !strings.Contains(msg, "no transaction lines") {
		t.Errorf("empty batch message = %q", msg)
	}
	msg := batchFailureMessage([]*models.ClaudePrediction{errorRow(), errorRow()})
	if !strings.Contains(msg, "2 malformed") {
		t.Errorf("malformed batch message = %q", msg)
	}
}

func TestSupersededIDs(t *testing.T) {
	prior := []*models.ClaudePrediction{completedRow(1000, nil), errorRow()}
	next := []*models.ClaudePrediction{completedRow(2000, nil)}

	successor, replaced, ok := supersededIDs(prior, next)
	if !ok {
		t.Fatal("a committed pass must retire the prior one")
	}
	if successor != next[0].ID {
		t.Errorf("successor = %s, want %s", successor, next[0].ID)
	}
	if len(replaced) != 2 || replaced[0] != prior[0].ID || replaced[1] != prior[1].ID {
		t.Errorf("replaced = %v, want both prior rows", replaced)
	}
}

func TestSupersededIDsEmptyPass(t *testing.T) {
	prior := []*models.ClaudePrediction{completedRow(1000, nil)}
	if _, _, ok := supersededIDs(prior, nil); ok {
		t.Error("an empty pass must leave the prior rows authoritative")
	}
	if _, _, ok := supersededIDs(nil, prior); ok {
		t.Error("nothing to supersede on the first pass")
	}
}
