package models

import (
	"encoding/json"
	"errors"
)

// Ошибки декодирования цитаты без обязательных полей.
var (
	ErrCitationURLRequired     = errors.New("citation url is required")
	ErrCitationSnippetRequired = errors.New("citation snippet is required")
)

// Citation — источник, приложенный клиентом к запросу.
// Поля url и snippet обязательны, title может отсутствовать.
type Citation struct {
	URL     string  `json:"url"`
	Title   *string `json:"title,omitempty"`
	Snippet string  `json:"snippet"`
}

// UnmarshalJSON отклоняет цитату без url или snippet (в том числе со значением null).
func (c *Citation) UnmarshalJSON(data []byte) error {
	var raw struct {
		URL     *string `json:"url"`
		Title   *string `json:"title"`
		Snippet *string `json:"snippet"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.URL == nil {
		return ErrCitationURLRequired
	}
	if raw.Snippet == nil {
		return ErrCitationSnippetRequired
	}

	*c = Citation{URL: *raw.URL, Title: raw.Title, Snippet: *raw.Snippet}
	return nil
}

// RawCompletionRequest — тело POST /v1/complete как оно пришло.
// Необязательные поля — указатели: nil означает, что поле не передано.
type RawCompletionRequest struct {
	Prompt      *string     `json:"prompt"`
	Locale      *string     `json:"locale,omitempty"`
	Model       *string     `json:"model,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	MaxTokens   *uint32     `json:"maxTokens,omitempty"`
	Citations   *[]Citation `json:"citations,omitempty"`
}

// CompletionRequest — запрос после валидации и подстановки значений по умолчанию.
type CompletionRequest struct {
	Prompt      string
	Locale      string
	Model       string
	Temperature float64
	MaxTokens   uint32
	Citations   []Citation
}

type Usage struct {
	Model       string  `json:"model"`
	Locale      string  `json:"locale"`
	Temperature float64 `json:"temperature"`
	MaxTokens   uint32  `json:"maxTokens"`
	Citations   int     `json:"citations"`
	Stub        bool    `json:"stub"`
}

type CompletionResponse struct {
	RequestID string `json:"requestId"`
	Text      string `json:"text"`
	Usage     Usage  `json:"usage"`
}

type ErrorResponse struct {
	RequestID string `json:"requestId"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}
