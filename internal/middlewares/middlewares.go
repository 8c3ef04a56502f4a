// Package middlewares содержит промежуточные обработчики (middleware), которые
// выполняются во время обработки HTTP-запросов: идентификатор запроса,
// перехват паник, сжатие Gzip и метрики.
package middlewares

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sol1corejz/llm-gateway/cmd/gzip"
	"github.com/sol1corejz/llm-gateway/internal/completion"
	"github.com/sol1corejz/llm-gateway/internal/logger"
	"github.com/sol1corejz/llm-gateway/internal/models"
	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"go.uber.org/zap"
)

// CodeInternal — код ответа при перехваченной панике.
const CodeInternal = "INTERNAL"

// RequestID определяет идентификатор запроса по заголовку X-Request-Id,
// кладёт его в контекст и сразу выставляет в заголовок ответа.
func RequestID(ids *requestid.Provider, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ids.Resolve(r.Header.Get(requestid.Header))

		w.Header().Set(requestid.Header, id)
		h.ServeHTTP(w, r.WithContext(requestid.WithContext(r.Context(), id)))
	}
}

// Recoverer перехватывает панику в обработчике и отвечает 500 с идентификатором запроса.
// Стоит снаружи RequestID, поэтому ловит и панику генератора идентификаторов;
// идентификатор берётся из заголовка ответа, иначе из заголовка запроса, иначе пустой.
func Recoverer(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			panicRecoveries.Inc()
			id := recoveredID(w, r)
			logger.Log.Error("panic recovered",
				zap.String("requestId", id),
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.String("error", fmt.Sprint(rec)),
			)

			if id != "" {
				w.Header().Set(requestid.Header, id)
			}
			writeError(w, http.StatusInternalServerError, models.ErrorResponse{
				RequestID: id,
				Code:      CodeInternal,
				Message:   "internal server error",
			})
		}()

		h.ServeHTTP(w, r)
	}
}

func recoveredID(w http.ResponseWriter, r *http.Request) string {
	if id := requestid.FromContext(r.Context()); id != "" {
		return id
	}
	if id := w.Header().Get(requestid.Header); id != "" {
		return id
	}
	id, _ := requestid.Accept(r.Header.Get(requestid.Header))
	return id
}

func writeError(w http.ResponseWriter, status int, resp models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Log.Error("error encoding response",
			zap.String("requestId", resp.RequestID),
			zap.Error(err),
		)
	}
}

// GzipMiddleware сжимает ответ, если клиент поддерживает gzip,
// и распаковывает тело запроса с Content-Encoding: gzip.
func GzipMiddleware(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ow := w

		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			cr, err := gzip.NewCompressReader(r.Body)
			if err != nil {
				logger.Log.Debug("cannot read gzip body",
					zap.String("requestId", requestid.FromContext(r.Context())),
					zap.Error(err),
				)
				writeError(w, http.StatusBadRequest, models.ErrorResponse{
					RequestID: requestid.FromContext(r.Context()),
					Code:      completion.CodeBadRequest,
					Message:   "invalid gzip body",
				})
				return
			}
			r.Body = cr
			defer cr.Close()
		}

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			cw := gzip.NewCompressWriter(w)
			ow = cw
			defer cw.Close()
		}

		h.ServeHTTP(ow, r)
	}
}
