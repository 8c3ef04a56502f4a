package completion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sol1corejz/llm-gateway/internal/models"
)

// BuildSuccess собирает заглушку ответа модели.
// В text попадают model, locale, temperature, maxTokens, количество цитат и превью,
// строго в этом порядке. Usage помечается флагом Stub.
func BuildSuccess(id string, req models.CompletionRequest, summary CitationSummary) models.CompletionResponse {
	text := fmt.Sprintf(
		"stub: completion generated (model=%s, locale=%s, temperature=%s, maxTokens=%d, citations=%d, preview=%s)",
		req.Model,
		req.Locale,
		formatFloat(req.Temperature),
		req.MaxTokens,
		summary.Count,
		renderPreview(summary.Preview),
	)

	return models.CompletionResponse{
		RequestID: id,
		Text:      text,
		Usage: models.Usage{
			Model:       req.Model,
			Locale:      req.Locale,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			Citations:   summary.Count,
			Stub:        true,
		},
	}
}

// BuildError собирает тело ответа об ошибке.
func BuildError(id, code, message string) models.ErrorResponse {
	return models.ErrorResponse{
		RequestID: id,
		Code:      code,
		Message:   message,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// renderPreview выводит список в виде ["a", "b"].
func renderPreview(preview []string) string {
	quoted := make([]string, len(preview))
	for i, p := range preview {
		quoted[i] = strconv.Quote(p)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
