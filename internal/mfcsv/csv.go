// Package mfcsv renders draft journal entries in the MF Cloud 会計
// 仕訳帳 import format.
// https://biz.moneyforward.com/support/account/guide/import-books/ib01.html
package mfcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"keiriflow/internal/models"
)

// Columns is the official 仕訳帳 import header, in column order.
var Columns = []string{
	"取引No",
	"取引日",
	"借方勘定科目",
	"借方補助科目",
	"借方部門",
	"借方取引先",
	"借方税区分",
	"借方インボイス",
	"借方金額(円)",
	"借方税額",
	"貸方勘定科目",
	"貸方補助科目",
	"貸方部門",
	"貸方取引先",
	"貸方税区分",
	"貸方インボイス",
	"貸方金額(円)",
	"貸方税額",
	"摘要",
	"仕訳メモ",
	"タグ",
	"MF仕訳タイプ",
	"決算整理仕訳",
}

const (
	taxExempt   = "対象外"
	invoiceFlag = "適格"
	journalType = "インポート"
)

// Row converts one draft entry into 仕訳帳 cells. Expense entries debit
// the predicted account against the tenant's deposit account; income
// entries mirror that. Amounts are emitted as positive whole yen.
func Row(e *models.MfJournalEntry, transactionNo int) []string {
	account := e.AccountSubject
	if account == "" {
		account = e.TransactionType.FallbackAccount()
	}

	amount := e.Amount().Abs().Truncate(0).String()
	date := e.TransactionDate.Format("2006/01/02")
	vendor := deref(e.Vendor)
	description := deref(e.Description)
	memo := deref(e.Memo)
	no := strconv.Itoa(transactionNo)

	if e.TransactionType == models.DirectionExpense {
		return []string{
			no, date,
			account, "", "", vendor, e.TaxCategory, invoiceFlag, amount, "0",
			e.AccountBook, "", "", "", taxExempt, "", amount, "0",
			description, memo, e.TagNames, journalType, "",
		}
	}
	return []string{
		no, date,
		e.AccountBook, "", "", "", taxExempt, "", amount, "0",
		account, "", "", vendor, e.TaxCategory, invoiceFlag, amount, "0",
		description, memo, e.TagNames, journalType, "",
	}
}

// Write emits header and rows as UTF-8 CSV. Transaction numbers are
// assigned sequentially from 1 in slice order.
func Write(w io.Writer, entries []*models.MfJournalEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(Row(e, i+1)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteShiftJIS emits the CSV transcoded to Shift_JIS, which is what
// the MF Cloud importer expects from desktop exports.
func WriteShiftJIS(w io.Writer, entries []*models.MfJournalEntry) error {
	tw := transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
	if err := Write(tw, entries); err != nil {
		return err
	}
	return tw.Close()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
