package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChatSession ties uploaded documents to an external conversation.
// DifyID is the conversation identifier supplied by the chat frontend.
type ChatSession struct {
	ID        uuid.UUID `db:"id"`
	TenantID  uuid.UUID `db:"tenant_id"`
	UserID    uuid.UUID `db:"user_id"`
	DifyID    string    `db:"dify_id"`
	Title     string    `db:"title"`
	Pinned    bool      `db:"pinned"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ChatFile is one uploaded source document. ExtractedAmount and
// ExtractedDate are a fast-path cache of the prediction results so the
// chat UI can render totals without joining the prediction tables.
type ChatFile struct {
	ID              uuid.UUID        `db:"id"`
	TenantID        uuid.UUID        `db:"tenant_id"`
	ChatSessionID   uuid.UUID        `db:"chat_session_id"`
	DifyID          string           `db:"dify_id"`
	FileName        string           `db:"file_name"`
	FileURL         string           `db:"file_url"`
	FileSize        int64            `db:"file_size"`
	MimeType        string           `db:"mime_type"`
	ExtractedAmount *decimal.Decimal `db:"extracted_amount"`
	ExtractedDate   *time.Time       `db:"extracted_date"`
	Status          FileStatus       `db:"status"`
	ErrorMessage    *string          `db:"error_message"`
	ProcessedAt     *time.Time       `db:"processed_at"`
	CreatedAt       time.Time        `db:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at"`
}
