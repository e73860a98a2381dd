package dto

type CreateReconciliationRequest struct {
	JournalEntryID   string `json:"journal_entry_id" validate:"required,uuid"`
	MfJournalEntryID string `json:"mf_journal_entry_id" validate:"omitempty,uuid"`
	ChatFileID       string `json:"chat_file_id" validate:"omitempty,uuid"`
}

type ResolveReconciliationRequest struct {
	Note string `json:"note" validate:"required"`
}

type ReconciliationResponse struct {
	ID               string `json:"id"`
	ChatFileID       string `json:"chat_file_id,omitempty"`
	JournalEntryID   string `json:"journal_entry_id"`
	MfJournalEntryID string `json:"mf_journal_entry_id,omitempty"`
	Status           string `json:"status"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}
