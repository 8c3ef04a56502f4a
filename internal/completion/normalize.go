// Package completion содержит логику обработки запроса на генерацию:
// валидацию, подстановку значений по умолчанию, сводку по цитатам
// и сборку ответов.
package completion

import (
	"errors"
	"strings"

	"github.com/sol1corejz/llm-gateway/internal/models"
)

// Значения по умолчанию для необязательных полей.
const (
	DefaultLocale      = "ru-RU"
	DefaultModel       = "stub"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = uint32(1024)
)

// CodeBadRequest — код ошибки валидации.
const CodeBadRequest = "BAD_REQUEST"

// ErrPromptRequired — пустой prompt.
var ErrPromptRequired = errors.New("prompt is required")

// ValidationError описывает отказ в обработке запроса из-за входных данных.
type ValidationError struct {
	Code    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Normalize проверяет запрос и подставляет значения по умолчанию.
// Единственное правило валидации: prompt не пустой после обрезки пробелов.
// Диапазоны temperature и maxTokens не проверяются.
func Normalize(raw models.RawCompletionRequest) (models.CompletionRequest, error) {
	prompt := valueOr(raw.Prompt, "")
	if strings.TrimSpace(prompt) == "" {
		return models.CompletionRequest{}, &ValidationError{
			Code:    CodeBadRequest,
			Message: ErrPromptRequired.Error(),
			Err:     ErrPromptRequired,
		}
	}

	citations := valueOr(raw.Citations, nil)
	if citations == nil {
		citations = []models.Citation{}
	}

	return models.CompletionRequest{
		Prompt:      prompt,
		Locale:      valueOr(raw.Locale, DefaultLocale),
		Model:       valueOr(raw.Model, DefaultModel),
		Temperature: valueOr(raw.Temperature, DefaultTemperature),
		MaxTokens:   valueOr(raw.MaxTokens, DefaultMaxTokens),
		Citations:   citations,
	}, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
