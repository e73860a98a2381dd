package provider

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CompositeExtractor routes documents to the cheapest backend that can
// handle them: PDFs try their text layer first and fall back to OCR
// when it is missing; images always go to OCR. Other MIME types are a
// permanent failure.
type CompositeExtractor struct {
	pdf    TextExtractor
	ocr    TextExtractor
	logger *zap.Logger
}

func NewCompositeExtractor(pdf, ocr TextExtractor, logger *zap.Logger) *CompositeExtractor {
	return &CompositeExtractor{pdf: pdf, ocr: ocr, logger: logger}
}

func (e *CompositeExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (*Extraction, error) {
	switch mimeType {
	case "application/pdf":
		result, err := e.pdf.ExtractText(ctx, data, mimeType)
		if err == nil {
			return result, nil
		}
		if IsTransient(err) {
			return nil, err
		}
		e.logger.Info("PDF has no usable text layer, falling back to OCR",
			zap.Error(err))
		return e.ocr.ExtractText(ctx, data, mimeType)
	case "image/jpeg", "image/jpg", "image/png":
		return e.ocr.ExtractText(ctx, data, mimeType)
	default:
		return nil, &Error{
			Op:      "extract",
			Code:    "unsupported_format",
			Message: fmt.Sprintf("unsupported file format: %s (supported: jpg, jpeg, png, pdf)", mimeType),
		}
	}
}
