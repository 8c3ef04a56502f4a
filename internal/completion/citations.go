package completion

import (
	"github.com/sol1corejz/llm-gateway/internal/models"
)

const (
	// PreviewLimit — сколько первых цитат попадает в превью.
	PreviewLimit = 3
	// SnippetLimit — максимальная длина фрагмента в символах.
	SnippetLimit = 80

	untitled = "untitled"
	ellipsis = "…"
	sep      = " | "
)

// CitationSummary — количество цитат и короткое превью первых из них.
type CitationSummary struct {
	Count   int
	Preview []string
}

// Summarize считает цитаты и строит превью для первых PreviewLimit штук.
// Count не ограничивается размером превью. Исходные записи не изменяются.
func Summarize(citations []models.Citation) CitationSummary {
	n := min(len(citations), PreviewLimit)
	preview := make([]string, 0, n)
	for _, c := range citations[:n] {
		preview = append(preview, previewEntry(c))
	}

	return CitationSummary{
		Count:   len(citations),
		Preview: preview,
	}
}

func previewEntry(c models.Citation) string {
	title := untitled
	if c.Title != nil {
		title = *c.Title
	}
	return title + sep + c.URL + sep + truncate(c.Snippet, SnippetLimit)
}

// truncate режет строку по границам символов, а не байтов,
// чтобы не ломать многобайтовый текст.
func truncate(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i] + ellipsis
		}
		count++
	}
	return s
}
