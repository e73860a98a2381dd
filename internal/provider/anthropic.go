package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"keiriflow/pkg/config"
)

const classifierSystemPrompt = `あなたは日本の中小企業向けの経理アシスタントです。OCRで抽出した財務書類のテキストを分析し、取引を構造化して返します。

# 役割
1. 書類(請求書、領収書、レシート、銀行明細)から取引を抽出する
2. 各取引に適切な勘定科目を推定する
3. 推定根拠と確信度を添える

# 出力形式
必ずJSON配列のみを返してください。マークダウンや説明文は不要です。
[
  {
    "vendor": "取引先名",
    "description": "取引内容の要約",
    "amount": 金額(正の数),
    "direction": "expense または income",
    "date": "YYYY-MM-DD",
    "account": "勘定科目名(例: 外注費, 水道光熱費, 通信費, 売上高)",
    "confidence": 0.0から1.0の確信度,
    "reasoning": "この勘定科目を選んだ理由(1-2文)"
  }
]

# ルール
- 取引が見つからない場合は空配列 [] を返す
- 書類に無い取引を作り出さない
- 金額は税込の合計額を使う
- 日付が無い場合は書類の発行日を使う`

// AnthropicPredictor classifies document text through the Anthropic
// Messages API.
// Documentation: https://docs.anthropic.com/en/api/messages
// Endpoint: POST /v1/messages
type AnthropicPredictor struct {
	config     *config.AnthropicConfig
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAnthropicPredictor(cfg *config.AnthropicConfig, logger *zap.Logger) *AnthropicPredictor {
	return &AnthropicPredictor{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Predict sends the extracted text to the model and parses the JSON
// array it returns. Text shorter than a plausible document is skipped
// without an API call.
func (p *AnthropicPredictor) Predict(ctx context.Context, ocrText string) (*Prediction, error) {
	ocrText = strings.TrimSpace(ocrText)
	if len(ocrText) < 10 {
		p.logger.Warn("Extracted text too short, skipping classification",
			zap.Int("length", len(ocrText)))
		return &Prediction{Model: p.config.Model}, nil
	}

	requestBody := map[string]interface{}{
		"model":      p.config.Model,
		"max_tokens": p.config.MaxTokens,
		"system":     classifierSystemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": "書類のテキスト:\n" + ocrText,
			},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		p.config.BaseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", p.config.Version)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &Error{
			Op:        "anthropic_predict",
			Code:      "request_failed",
			Message:   err.Error(),
			Transient: true,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		perr := &Error{
			Op:        "anthropic_predict",
			Code:      fmt.Sprintf("http_%d", resp.StatusCode),
			Message:   string(bodyBytes),
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
		p.logger.Error("Messages API request failed",
			zap.Int("status", resp.StatusCode),
			zap.Bool("transient", perr.Transient),
		)
		return nil, perr
	}

	var msgResp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Model string `json:"model"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	raw := sb.String()
	if strings.TrimSpace(raw) == "" {
		return nil, &Error{
			Op:      "anthropic_predict",
			Code:    "empty_response",
			Message: "no text content in model response",
		}
	}

	proposals, itemErrs, err := ParseProposals(raw)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Classification completed",
		zap.String("model", msgResp.Model),
		zap.Int("proposals", len(proposals)),
		zap.Int("malformed_items", len(itemErrs)),
		zap.Int("tokens", msgResp.Usage.InputTokens+msgResp.Usage.OutputTokens),
	)

	return &Prediction{
		Proposals:  proposals,
		ItemErrors: itemErrs,
		Model:      msgResp.Model,
		TokensUsed: msgResp.Usage.InputTokens + msgResp.Usage.OutputTokens,
		Raw:        raw,
	}, nil
}
