package provider

import (
	"testing"

	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

func TestParseProposalsBareArray(t *testing.T) {
	content := `[
		{"vendor": "東京電力", "description": "電気代", "amount": 5000,
		 "direction": "expense", "date": "2024-01-15",
		 "account": "水道光熱費", "confidence": 0.87, "reasoning": "電気料金の請求書"}
	]`
	proposals, itemErrs, err := ParseProposals(content)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(itemErrs) != 0 {
		t.Fatalf("unexpected item errors: %v", itemErrs)
	}
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
	p := proposals[0]
	if p.Vendor != "東京電力" || p.Account != "水道光熱費" {
		t.Errorf("unexpected proposal: %+v", p)
	}
	if !p.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("amount = %s, want 5000", p.Amount)
	}
	if p.Direction != models.DirectionExpense {
		t.Errorf("direction = %q, want expense", p.Direction)
	}
}

func TestParseProposalsMarkdownFenced(t *testing.T) {
	content := "```json\n[{\"vendor\": \"ABC商事\", \"amount\": 120000, \"direction\": \"income\"}]\n```"
	proposals, _, err := ParseProposals(content)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 1 || proposals[0].Vendor != "ABC商事" {
		t.Fatalf("got %+v", proposals)
	}
}

func TestParseProposalsSurroundingProse(t *testing.T) {
	content := `以下が抽出結果です。
[{"vendor": "A", "amount": 100, "direction": "expense"}]
ご確認ください。`
	proposals, _, err := ParseProposals(content)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
}

func TestParseProposalsEmptyArray(t *testing.T) {
	proposals, itemErrs, err := ParseProposals("[]")
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 0 || len(itemErrs) != 0 {
		t.Fatalf("got %d proposals, %d errors", len(proposals), len(itemErrs))
	}
}

func TestParseProposalsMalformedItemIsolated(t *testing.T) {
	content := `[
		{"vendor": "A", "amount": 100, "direction": "expense"},
		{"vendor": "B", "amount": "not-a-number", "direction": "expense"},
		{"vendor": "C", "amount": 300, "direction": "income"}
	]`
	proposals, itemErrs, err := ParseProposals(content)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("got %d proposals, want 2 survivors", len(proposals))
	}
	if len(itemErrs) != 1 || itemErrs[0].Index != 1 {
		t.Fatalf("item errors = %+v, want one at index 1", itemErrs)
	}
	if proposals[0].Vendor != "A" || proposals[1].Vendor != "C" {
		t.Errorf("survivors wrong: %+v", proposals)
	}
}

func TestParseProposalsZeroAmountRejected(t *testing.T) {
	proposals, itemErrs, err := ParseProposals(`[{"vendor": "A", "amount": 0, "direction": "expense"}]`)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 0 || len(itemErrs) != 1 {
		t.Fatalf("got %d proposals, %d errors; want 0 and 1", len(proposals), len(itemErrs))
	}
}

func TestParseProposalsNegativeAmountNormalized(t *testing.T) {
	proposals, _, err := ParseProposals(`[{"vendor": "A", "amount": -2500, "direction": "expense"}]`)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if len(proposals) != 1 || !proposals[0].Amount.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("got %+v, want amount 2500", proposals)
	}
}

func TestParseProposalsNoArray(t *testing.T) {
	_, _, err := ParseProposals("申し訳ありませんが、取引は見つかりませんでした。")
	if err == nil {
		t.Fatal("expected an error for prose without a JSON array")
	}
	if IsTransient(err) {
		t.Error("parse failures must be permanent")
	}
}

func TestParseProposalsJapaneseDirection(t *testing.T) {
	proposals, _, err := ParseProposals(`[{"vendor": "A", "amount": 100, "direction": "収入"}]`)
	if err != nil {
		t.Fatalf("ParseProposals: %v", err)
	}
	if proposals[0].Direction != models.DirectionIncome {
		t.Errorf("direction = %q, want income", proposals[0].Direction)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&Error{Op: "x", Code: "http_503", Transient: true}) {
		t.Error("transient error not recognized")
	}
	if IsTransient(&Error{Op: "x", Code: "http_401"}) {
		t.Error("permanent error misclassified")
	}
	if IsTransient(nil) {
		t.Error("nil is not transient")
	}
}
