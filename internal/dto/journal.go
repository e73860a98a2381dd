package dto

type CreateMfJournalRequest struct {
	PredictionID string `json:"prediction_id" validate:"required,uuid"`
}

type MfJournalEntryResponse struct {
	ID                 string `json:"id"`
	TransactionDate    string `json:"transaction_date"`
	TransactionType    string `json:"transaction_type"`
	IncomeAmount       string `json:"income_amount,omitempty"`
	ExpenseAmount      string `json:"expense_amount,omitempty"`
	AccountSubject     string `json:"account_subject"`
	MatchedAccountCode string `json:"matched_account_code,omitempty"`
	Vendor             string `json:"vendor,omitempty"`
	MatchedVendorCode  string `json:"matched_vendor_code,omitempty"`
	Description        string `json:"description,omitempty"`
	AccountBook        string `json:"account_book"`
	TaxCategory        string `json:"tax_category"`
	Memo               string `json:"memo,omitempty"`
	TagNames           string `json:"tag_names"`
	CsvExported        bool   `json:"csv_exported"`
	CsvExportedAt      string `json:"csv_exported_at,omitempty"`
	MfImported         bool   `json:"mf_imported"`
	MfImportedAt       string `json:"mf_imported_at,omitempty"`
	MfJournalID        string `json:"mf_journal_id,omitempty"`
	Status             string `json:"status"`
	ErrorMessage       string `json:"error_message,omitempty"`
	CreatedAt          string `json:"created_at"`
}

type ExportRequest struct {
	EntryIDs []string `json:"entry_ids" validate:"required,min=1,dive,uuid"`
	// Force re-renders entries that were already exported; without it
	// re-selecting an exported entry is a no-op.
	Force bool `json:"force"`
}

type ExportResponse struct {
	Token       string   `json:"token"`
	DownloadURL string   `json:"download_url"`
	ExpiresAt   string   `json:"expires_at"`
	EntryIDs    []string `json:"entry_ids"`
	RowCount    int      `json:"row_count"`
}

type ConfirmImportRequest struct {
	EntryID     string `json:"entry_id" validate:"required,uuid"`
	MfJournalID string `json:"mf_journal_id" validate:"required"`
}

type CreateJournalEntryRequest struct {
	EntryDate     string `json:"entry_date" validate:"required"`
	Description   string `json:"description" validate:"required"`
	DebitAccount  string `json:"debit_account" validate:"required"`
	CreditAccount string `json:"credit_account" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
}

type JournalEntryResponse struct {
	ID            string `json:"id"`
	EntryDate     string `json:"entry_date"`
	Description   string `json:"description"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference,omitempty"`
	CreatedAt     string `json:"created_at"`
}
