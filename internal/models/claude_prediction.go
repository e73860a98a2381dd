package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaudePrediction is one accounting line derived from an AiResult.
// Rows are immutable once matched; re-matching inserts a superseding
// row and points SupersededBy at it, preserving the audit trail.
type ClaudePrediction struct {
	ID                 uuid.UUID        `db:"id"`
	TenantID           uuid.UUID        `db:"tenant_id"`
	ChatFileID         uuid.UUID        `db:"chat_file_id"`
	AiResultID         *uuid.UUID       `db:"ai_result_id"`
	InputVendor        string           `db:"input_vendor"`
	InputDescription   string           `db:"input_description"`
	InputAmount        decimal.Decimal  `db:"input_amount"`
	InputDirection     Direction        `db:"input_direction"`
	InputDate          *time.Time       `db:"input_date"`
	PredictedAccount   string           `db:"predicted_account"`
	AccountConfidence  float64          `db:"account_confidence"`
	Reasoning          *string          `db:"reasoning"`
	MatchedVendorID    *uuid.UUID       `db:"matched_vendor_id"`
	MatchedVendorCode  *string          `db:"matched_vendor_code"`
	MatchedVendorName  *string          `db:"matched_vendor_name"`
	VendorConfidence   *float64         `db:"vendor_confidence"`
	MatchedAccountID   *uuid.UUID       `db:"matched_account_id"`
	MatchedAccountCode *string          `db:"matched_account_code"`
	MatchedAccountName *string          `db:"matched_account_name"`
	ClaudeModel        string           `db:"claude_model"`
	TokensUsed         *int             `db:"tokens_used"`
	RawResponse        *string          `db:"raw_response"`
	Status             PredictionStatus `db:"status"`
	ErrorMessage       *string          `db:"error_message"`
	SupersededBy       *uuid.UUID       `db:"superseded_by"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// AccountMatched reports whether the prediction resolved to a registry
// account, which makes it eligible for journal drafting.
func (p *ClaudePrediction) AccountMatched() bool {
	return p.MatchedAccountID != nil
}

func (p *ClaudePrediction) VendorMatched() bool {
	return p.MatchedVendorID != nil
}
