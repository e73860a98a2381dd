package models

import (
	"time"

	"github.com/google/uuid"
)

// OcrResult is one extraction attempt for a ChatFile. Completed rows
// are immutable; a retry inserts a new attempt and the most recently
// created completed row is authoritative.
type OcrResult struct {
	ID           uuid.UUID `db:"id"`
	TenantID     uuid.UUID `db:"tenant_id"`
	ChatFileID   uuid.UUID `db:"chat_file_id"`
	FileName     string    `db:"file_name"`
	OcrText      string    `db:"ocr_text"`
	Confidence   float64   `db:"confidence"`
	Status       OcrStatus `db:"status"`
	ErrorMessage *string   `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AiResult is the raw language-model payload for one prediction pass.
// TokensUsed is recorded once per pass, not per line item.
type AiResult struct {
	ID           uuid.UUID `db:"id"`
	TenantID     uuid.UUID `db:"tenant_id"`
	ChatFileID   uuid.UUID `db:"chat_file_id"`
	Result       string    `db:"result"`
	Model        string    `db:"model"`
	TokensUsed   int       `db:"tokens_used"`
	Status       AiStatus  `db:"status"`
	ErrorMessage *string   `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
