// Package requestid отвечает за корреляционный идентификатор запроса:
// принимает идентификатор из заголовка X-Request-Id или генерирует новый.
package requestid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// Header — имя заголовка, в котором передаётся идентификатор.
	Header = "X-Request-Id"
	// Prefix — префикс сгенерированных идентификаторов.
	Prefix = "req_"
	// MinLength и MaxLength — допустимая длина внешнего идентификатора в символах.
	MinLength = 8
	MaxLength = 128

	randomBytes = 12
)

type ctxKey struct{}

// Provider генерирует идентификаторы из заданного источника энтропии.
type Provider struct {
	mu     sync.Mutex
	source io.Reader
}

// Default использует crypto/rand.
var Default = NewProvider(rand.Reader)

// NewProvider создаёт Provider поверх источника случайных байт.
// В тестах сюда передаётся детерминированный reader.
func NewProvider(source io.Reader) *Provider {
	return &Provider{source: source}
}

// Resolve возвращает идентификатор запроса по значению заголовка.
// Значение после обрезки пробелов длиной от MinLength до MaxLength символов
// используется как есть, иначе генерируется новый идентификатор.
func (p *Provider) Resolve(header string) string {
	if id, ok := Accept(header); ok {
		return id
	}
	return p.New()
}

// Accept проверяет внешний идентификатор без генерации нового:
// возвращает обрезанное значение и true, если его длина в допустимых пределах.
func Accept(header string) (string, bool) {
	id := strings.TrimSpace(header)
	if n := utf8.RuneCountInString(id); n >= MinLength && n <= MaxLength {
		return id, true
	}
	return "", false
}

// New генерирует идентификатор вида req_<24 hex>.
// Ошибка чтения энтропии не считается ошибкой запроса, поэтому New паникует.
func (p *Provider) New() string {
	b := make([]byte, randomBytes)

	p.mu.Lock()
	_, err := io.ReadFull(p.source, b)
	p.mu.Unlock()

	if err != nil {
		panic(fmt.Errorf("requestid: read entropy: %w", err))
	}
	return Prefix + hex.EncodeToString(b)
}

// WithContext кладёт идентификатор в контекст.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext достаёт идентификатор из контекста, пустая строка если его нет.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
