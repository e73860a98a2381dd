package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// FitzExtractor pulls the text layer out of PDFs with go-fitz. Scanned
// PDFs without a text layer come back empty, which the caller treats
// as a signal to fall through to OCR.
type FitzExtractor struct {
	logger *zap.Logger
}

func NewFitzExtractor(logger *zap.Logger) *FitzExtractor {
	return &FitzExtractor{logger: logger}
}

func (e *FitzExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (*Extraction, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &Error{
			Op:      "fitz_extract",
			Code:    "open_failed",
			Message: fmt.Sprintf("failed to open PDF: %v", err),
		}
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageText, err := doc.Text(i)
		if err != nil {
			e.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.Error(err),
			)
			continue
		}
		if pageText != "" {
			textBuilder.WriteString(pageText)
			textBuilder.WriteString("\n")
		}
	}

	text := strings.TrimSpace(textBuilder.String())
	if text == "" {
		return nil, &Error{
			Op:      "fitz_extract",
			Code:    "no_text_layer",
			Message: "no text found in PDF",
		}
	}

	e.logger.Info("PDF text extracted",
		zap.Int("pages", doc.NumPage()),
		zap.Int("text_length", len(text)),
	)
	return &Extraction{Text: text, Confidence: 1.0}, nil
}
