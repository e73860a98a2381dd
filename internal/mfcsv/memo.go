package mfcsv

import (
	"fmt"
	"math"
	"strings"
)

// NormalizeConfidenceRatio coerces a confidence-like value into a 0..1
// ratio. Values above 1 are treated as percentages; out-of-range input
// is clamped.
func NormalizeConfidenceRatio(v float64) float64 {
	if v > 1.0 {
		v = v / 100.0
	}
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// FormatConfidencePercent renders a confidence ratio as a percent
// string, preferring whole percents ("87%") and falling back to one
// decimal ("87.5%").
func FormatConfidencePercent(v float64) string {
	percent := NormalizeConfidenceRatio(v) * 100.0
	if math.Abs(percent-math.Round(percent)) < 1e-6 {
		return fmt.Sprintf("%.0f%%", percent)
	}
	return fmt.Sprintf("%.1f%%", percent)
}

// BuildJournalMemo assembles the 仕訳メモ text from the classifier's
// reasoning and the match confidences. Nil confidences are omitted;
// when everything is empty the memo is empty.
//
//	"理由... (conf: acc=87%, vendor=65%)"
//	"conf: acc=87%"
func BuildJournalMemo(reason string, accountConfidence, vendorConfidence *float64) string {
	reason = strings.TrimSpace(reason)

	var parts []string
	if accountConfidence != nil {
		parts = append(parts, "acc="+FormatConfidencePercent(*accountConfidence))
	}
	if vendorConfidence != nil {
		parts = append(parts, "vendor="+FormatConfidencePercent(*vendorConfidence))
	}

	if len(parts) == 0 {
		return reason
	}
	conf := strings.Join(parts, ", ")
	if reason != "" {
		return fmt.Sprintf("%s (conf: %s)", reason, conf)
	}
	return "conf: " + conf
}
