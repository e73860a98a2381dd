package models

import "strings"

type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// ParseDirection normalizes the direction strings seen in OCR/LLM
// output, including the Japanese bookkeeping terms.
func ParseDirection(raw string) Direction {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "income", "in", "収入", "入金":
		return DirectionIncome
	case "expense", "out", "支出", "出金":
		return DirectionExpense
	}
	if strings.Contains(s, "in") || strings.Contains(s, "収") {
		return DirectionIncome
	}
	return DirectionExpense
}

// FallbackAccount is the account subject used when classification
// produced nothing usable: 雑費 for expenses, 売上高 for income.
func (d Direction) FallbackAccount() string {
	if d == DirectionIncome {
		return "売上高"
	}
	return "雑費"
}

// DefaultTaxCategory returns the MF tax category for the direction.
func (d Direction) DefaultTaxCategory() string {
	if d == DirectionIncome {
		return "課税売上10%"
	}
	return "課税仕入10%"
}
