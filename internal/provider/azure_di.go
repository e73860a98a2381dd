package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"keiriflow/pkg/config"
)

// AzureDIExtractor extracts text from scanned documents through Azure
// Document Intelligence.
// Documentation: https://learn.microsoft.com/en-us/rest/api/aiservices/document-models
// Analysis is asynchronous: POST :analyze returns 202 with an
// Operation-Location header, which is polled until the run settles.
type AzureDIExtractor struct {
	config     *config.AzureDIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAzureDIExtractor(cfg *config.AzureDIConfig, logger *zap.Logger) *AzureDIExtractor {
	return &AzureDIExtractor{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (e *AzureDIExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (*Extraction, error) {
	opURL, err := e.beginAnalyze(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}
	return e.pollResult(ctx, opURL)
}

func (e *AzureDIExtractor) beginAnalyze(ctx context.Context, data []byte, mimeType string) (string, error) {
	analyzeURL := fmt.Sprintf(
		"%s/documentintelligence/documentModels/%s:analyze?api-version=%s",
		e.config.Endpoint, e.config.ModelID, e.config.APIVersion,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", analyzeURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create analyze request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Ocp-Apim-Subscription-Key", e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", &Error{
			Op:        "azure_di_analyze",
			Code:      "request_failed",
			Message:   err.Error(),
			Transient: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Op:        "azure_di_analyze",
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   string(bodyBytes),
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	opURL := resp.Header.Get("Operation-Location")
	if opURL == "" {
		return "", &Error{
			Op:      "azure_di_analyze",
			Code:    "no_operation_location",
			Message: "analyze accepted but no Operation-Location header returned",
		}
	}
	return opURL, nil
}

func (e *AzureDIExtractor) pollResult(ctx context.Context, opURL string) (*Extraction, error) {
	ticker := time.NewTicker(e.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		result, done, err := e.fetchResult(ctx, opURL)
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
	}
}

func (e *AzureDIExtractor) fetchResult(ctx context.Context, opURL string) (*Extraction, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", opURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create poll request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.config.APIKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false, err
		}
		return nil, false, &Error{
			Op:        "azure_di_poll",
			Code:      "request_failed",
			Message:   err.Error(),
			Transient: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, false, &Error{
			Op:        "azure_di_poll",
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   string(bodyBytes),
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}

	var pollResp struct {
		Status        string `json:"status"`
		AnalyzeResult struct {
			Content   string `json:"content"`
			Documents []struct {
				Confidence float64 `json:"confidence"`
			} `json:"documents"`
		} `json:"analyzeResult"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pollResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode poll response: %w", err)
	}

	switch pollResp.Status {
	case "succeeded":
		confidence := 1.0
		if len(pollResp.AnalyzeResult.Documents) > 0 {
			confidence = pollResp.AnalyzeResult.Documents[0].Confidence
		}
		e.logger.Info("Document analysis completed",
			zap.Int("text_length", len(pollResp.AnalyzeResult.Content)),
			zap.Float64("confidence", confidence),
		)
		return &Extraction{
			Text:       pollResp.AnalyzeResult.Content,
			Confidence: confidence,
		}, true, nil
	case "failed":
		return nil, false, &Error{
			Op:      "azure_di_poll",
			Code:    pollResp.Error.Code,
			Message: pollResp.Error.Message,
		}
	default:
		// running / notStarted
		return nil, false, nil
	}
}
