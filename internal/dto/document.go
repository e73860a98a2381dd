package dto

type UploadDocumentRequest struct {
	ChatID string `json:"chat_id"`
	Title  string `json:"title"`
}

type ChatFileResponse struct {
	ID              string `json:"id"`
	ChatSessionID   string `json:"chat_session_id"`
	FileName        string `json:"file_name"`
	FileSize        int64  `json:"file_size"`
	FileURL         string `json:"file_url"`
	MimeType        string `json:"mime_type"`
	Status          string `json:"status"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ExtractedAmount string `json:"extracted_amount,omitempty"`
	ExtractedDate   string `json:"extracted_date,omitempty"`
	ProcessedAt     string `json:"processed_at,omitempty"`
	CreatedAt       string `json:"created_at"`
}

type ExtractRequest struct {
	Force bool `json:"force"`
}

type OcrResultResponse struct {
	ID         string  `json:"id"`
	ChatFileID string  `json:"chat_file_id"`
	OcrText    string  `json:"ocr_text"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
}

type PredictionResponse struct {
	ID                 string  `json:"id"`
	ChatFileID         string  `json:"chat_file_id"`
	Vendor             string  `json:"vendor"`
	Description        string  `json:"description"`
	Amount             string  `json:"amount"`
	Direction          string  `json:"direction"`
	Date               string  `json:"date,omitempty"`
	PredictedAccount   string  `json:"predicted_account"`
	AccountConfidence  float64 `json:"account_confidence"`
	Reasoning          string  `json:"reasoning,omitempty"`
	MatchedVendorCode  string  `json:"matched_vendor_code,omitempty"`
	MatchedVendorName  string  `json:"matched_vendor_name,omitempty"`
	VendorConfidence   float64 `json:"vendor_confidence,omitempty"`
	MatchedAccountCode string  `json:"matched_account_code,omitempty"`
	MatchedAccountName string  `json:"matched_account_name,omitempty"`
	Status             string  `json:"status"`
	ErrorMessage       string  `json:"error_message,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type ProcessDocumentResponse struct {
	File        ChatFileResponse     `json:"file"`
	OcrResult   *OcrResultResponse   `json:"ocr_result,omitempty"`
	Predictions []PredictionResponse `json:"predictions"`
}
