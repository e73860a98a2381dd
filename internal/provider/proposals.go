package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

// ParseProposals extracts transaction proposals from raw model output.
// The model is told to return a bare JSON array, but responses arrive
// wrapped in markdown fences or with prose around them often enough
// that the parser slices out the first array it can find. Malformed
// elements are reported per item instead of failing the whole batch.
func ParseProposals(content string) ([]Proposal, []ItemError, error) {
	jsonStr, err := sliceJSONArray(content)
	if err != nil {
		return nil, nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, nil, &Error{
			Op:      "parse_proposals",
			Code:    "invalid_json",
			Message: fmt.Sprintf("response is not a JSON array: %v", err),
		}
	}

	proposals := make([]Proposal, 0, len(raw))
	var itemErrs []ItemError
	for i, elem := range raw {
		var item struct {
			Vendor      string      `json:"vendor"`
			Description string      `json:"description"`
			Amount      json.Number `json:"amount"`
			Direction   string      `json:"direction"`
			Date        string      `json:"date"`
			Account     string      `json:"account"`
			Confidence  float64     `json:"confidence"`
			Reasoning   string      `json:"reasoning"`
		}
		if err := json.Unmarshal(elem, &item); err != nil {
			itemErrs = append(itemErrs, ItemError{Index: i, Message: err.Error()})
			continue
		}
		amount, err := decimal.NewFromString(item.Amount.String())
		if err != nil {
			itemErrs = append(itemErrs, ItemError{
				Index:   i,
				Message: fmt.Sprintf("invalid amount %q: %v", item.Amount.String(), err),
			})
			continue
		}
		if amount.IsZero() {
			itemErrs = append(itemErrs, ItemError{Index: i, Message: "amount is zero"})
			continue
		}
		proposals = append(proposals, Proposal{
			Vendor:      strings.TrimSpace(item.Vendor),
			Description: strings.TrimSpace(item.Description),
			Amount:      amount.Abs(),
			Direction:   models.ParseDirection(item.Direction),
			Date:        strings.TrimSpace(item.Date),
			Account:     strings.TrimSpace(item.Account),
			Confidence:  item.Confidence,
			Reasoning:   strings.TrimSpace(item.Reasoning),
		})
	}
	return proposals, itemErrs, nil
}

// sliceJSONArray isolates the first top-level JSON array in content,
// stripping markdown code fences first.
func sliceJSONArray(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return "", &Error{
			Op:      "parse_proposals",
			Code:    "no_json_array",
			Message: "no JSON array found in model response",
		}
	}
	return content[start : end+1], nil
}
