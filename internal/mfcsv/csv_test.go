package mfcsv

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

func ptr[T any](v T) *T { return &v }

func expenseEntry() *models.MfJournalEntry {
	amount := decimal.NewFromInt(5000)
	return &models.MfJournalEntry{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		TransactionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TransactionType: models.DirectionExpense,
		ExpenseAmount:   &amount,
		AccountSubject:  "水道光熱費",
		Vendor:          ptr("東京電力"),
		Description:     ptr("電気代 (invoice.pdf)"),
		AccountBook:     "普通預金",
		TaxCategory:     "課税仕入10%",
		Memo:            ptr("電気料金の請求書 (conf: acc=87%, vendor=65%)"),
		TagNames:        "AI自動仕訳",
		Status:          models.JournalStatusDraft,
	}
}

func incomeEntry() *models.MfJournalEntry {
	amount := decimal.NewFromInt(120000)
	return &models.MfJournalEntry{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		TransactionDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		TransactionType: models.DirectionIncome,
		IncomeAmount:    &amount,
		AccountSubject:  "売上高",
		Vendor:          ptr("ABC商事"),
		Description:     ptr("2月分請求"),
		AccountBook:     "普通預金",
		TaxCategory:     "課税売上10%",
		TagNames:        "AI自動仕訳",
		Status:          models.JournalStatusDraft,
	}
}

func TestRowExpense(t *testing.T) {
	row := Row(expenseEntry(), 1)
	if len(row) != len(Columns) {
		t.Fatalf("row has %d cells, want %d", len(row), len(Columns))
	}
	cells := map[string]string{}
	for i, col := range Columns {
		cells[col] = row[i]
	}
	want := map[string]string{
		"取引No":    "1",
		"取引日":     "2024/01/15",
		"借方勘定科目":  "水道光熱費",
		"借方取引先":   "東京電力",
		"借方税区分":   "課税仕入10%",
		"借方インボイス": "適格",
		"借方金額(円)": "5000",
		"借方税額":    "0",
		"貸方勘定科目":  "普通預金",
		"貸方税区分":   "対象外",
		"貸方金額(円)": "5000",
		"摘要":      "電気代 (invoice.pdf)",
		"タグ":      "AI自動仕訳",
		"MF仕訳タイプ": "インポート",
		"決算整理仕訳":  "",
	}
	for col, v := range want {
		if cells[col] != v {
			t.Errorf("%s = %q, want %q", col, cells[col], v)
		}
	}
}

func TestRowIncomeMirrorsSides(t *testing.T) {
	row := Row(incomeEntry(), 3)
	cells := map[string]string{}
	for i, col := range Columns {
		cells[col] = row[i]
	}
	if cells["借方勘定科目"] != "普通預金" || cells["貸方勘定科目"] != "売上高" {
		t.Errorf("income entry sides wrong: debit=%q credit=%q",
			cells["借方勘定科目"], cells["貸方勘定科目"])
	}
	if cells["貸方取引先"] != "ABC商事" || cells["借方取引先"] != "" {
		t.Errorf("vendor must sit on the credit side for income")
	}
	if cells["貸方税区分"] != "課税売上10%" || cells["借方税区分"] != "対象外" {
		t.Errorf("tax categories wrong: debit=%q credit=%q",
			cells["借方税区分"], cells["貸方税区分"])
	}
	if cells["取引No"] != "3" {
		t.Errorf("取引No = %q, want 3", cells["取引No"])
	}
}

func TestRowFallbackAccount(t *testing.T) {
	e := expenseEntry()
	e.AccountSubject = ""
	row := Row(e, 1)
	if row[2] != "雑費" {
		t.Errorf("empty account subject must fall back to 雑費, got %q", row[2])
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, []*models.MfJournalEntry{expenseEntry(), incomeEntry()}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "取引No" || len(records[0]) != len(Columns) {
		t.Errorf("header mismatch: %v", records[0])
	}
	if records[1][0] != "1" || records[2][0] != "2" {
		t.Errorf("transaction numbers must be sequential, got %q %q",
			records[1][0], records[2][0])
	}
}

func TestWriteShiftJIS(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteShiftJIS(&buf, []*models.MfJournalEntry{expenseEntry()}); err != nil {
		t.Fatalf("WriteShiftJIS: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("取引日")) {
		t.Error("output still contains UTF-8 header text, expected Shift_JIS bytes")
	}
	// 仕訳帳 headers transcode to cp932 without loss.
	if buf.Len() == 0 {
		t.Fatal("empty output")
	}
}

func TestBuildJournalMemo(t *testing.T) {
	acc, vendor := 0.87, 0.65
	tests := []struct {
		name   string
		reason string
		acc    *float64
		vendor *float64
		want   string
	}{
		{"full", "電気料金の請求書", &acc, &vendor, "電気料金の請求書 (conf: acc=87%, vendor=65%)"},
		{"confidence only", "", &acc, nil, "conf: acc=87%"},
		{"reason only", "  消耗品の購入  ", nil, nil, "消耗品の購入"},
		{"empty", "", nil, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildJournalMemo(tt.reason, tt.acc, tt.vendor); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatConfidencePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.87, "87%"},
		{0.875, "87.5%"},
		{87, "87%"},
		{1.0, "100%"},
		{-0.5, "0%"},
	}
	for _, tt := range tests {
		if got := FormatConfidencePercent(tt.in); got != tt.want {
			t.Errorf("FormatConfidencePercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColumnsMatchImportLayout(t *testing.T) {
	if len(Columns) != 23 {
		t.Fatalf("仕訳帳 import format has 23 columns, got %d", len(Columns))
	}
	if !strings.HasPrefix(Columns[0], "取引No") || Columns[22] != "決算整理仕訳" {
		t.Errorf("column order drifted: first=%q last=%q", Columns[0], Columns[22])
	}
}
