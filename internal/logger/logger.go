// Package logger предоставляет функции для инициализации и использования логирования
// в приложении, включая логирование HTTP-запросов с помощью библиотеки zap.
package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"go.uber.org/zap"
)

// ServiceName попадает в каждое сообщение лога.
const ServiceName = "llm-gateway"

// Log является глобальной переменной для использования логгера. Изначально настроен на no-op логгер.
var Log = zap.NewNop()

// Initialize настраивает логгер с указанным уровнем логирования, например "info" или "debug".
// К каждому сообщению добавляются имя сервиса и идентификатор экземпляра процесса.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl.With(
		zap.String("service", ServiceName),
		zap.String("instance", uuid.NewString()),
	)
	return nil
}

// RequestLogger оборачивает HTTP-обработчик и пишет в лог путь, метод, статус,
// размер ответа, длительность и идентификатор запроса.
func RequestLogger(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		h(ww, r)

		Log.Info("got incoming HTTP request",
			zap.String("requestId", requestid.FromContext(r.Context())),
			zap.String("path", r.RequestURI),
			zap.String("method", r.Method),
			zap.Int("status", status(ww)),
			zap.Int("size", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func status(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
