// Package provider holds the external collaborators of the document
// pipeline: text extraction backends and the account classifier.
// Implementations classify their failures as transient or permanent so
// the pipeline can decide whether a retry is worth anything.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"keiriflow/internal/models"
)

// Error is a provider failure with retry classification. Transient
// covers timeouts, rate limits and 5xx responses; everything else
// (bad credentials, unsupported input, malformed requests) is
// permanent and retrying it just burns quota.
type Error struct {
	Op        string
	Code      string
	Message   string
	Transient bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Code)
}

// IsTransient reports whether err (anywhere in its chain) is a
// provider error worth retrying.
func IsTransient(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Transient
	}
	return false
}

// Extraction is the result of pulling text out of a document.
type Extraction struct {
	Text       string
	Confidence float64
}

// TextExtractor turns raw document bytes into text. mimeType guides
// backend selection.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (*Extraction, error)
}

// Proposal is one transaction the classifier found in the extracted
// text, before any registry matching.
type Proposal struct {
	Vendor      string           `json:"vendor"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Direction   models.Direction `json:"direction"`
	Date        string           `json:"date"`
	Account     string           `json:"account"`
	Confidence  float64          `json:"confidence"`
	Reasoning   string           `json:"reasoning"`
}

// ItemError records a single malformed element of the classifier's
// response. One broken item must not discard its siblings.
type ItemError struct {
	Index   int
	Message string
}

// Prediction is the classifier's full answer for one document.
type Prediction struct {
	Proposals  []Proposal
	ItemErrors []ItemError
	Model      string
	TokensUsed int
	Raw        string
}

// Predictor classifies extracted document text into transaction
// proposals with suggested account subjects.
type Predictor interface {
	Predict(ctx context.Context, ocrText string) (*Prediction, error)
}
