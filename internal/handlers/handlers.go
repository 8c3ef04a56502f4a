package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sol1corejz/llm-gateway/cmd/config"
	"github.com/sol1corejz/llm-gateway/internal/completion"
	"github.com/sol1corejz/llm-gateway/internal/logger"
	"github.com/sol1corejz/llm-gateway/internal/models"
	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"go.uber.org/zap"
)

const (
	healthBody = "ok"
	rootBody   = "llm-gateway stub"
)

// Outcome labels for completionsTotal.
const (
	outcomeOK          = "ok"
	outcomeBadRequest  = "bad_request"
	outcomeInvalidBody = "invalid_body"
)

var errTrailingData = errors.New("unexpected data after JSON body")

var completionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "llm_gateway_completions_total",
		Help: "Completion requests by outcome",
	},
	[]string{"outcome"},
)

// HandleHealthz отвечает на проверку живости фиксированной строкой "ok".
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, requestID(r), healthBody)
}

// HandleRoot — заглушка корневого маршрута.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, requestID(r), rootBody)
}

// HandleComplete обрабатывает POST /v1/complete.
// Тело декодируется, проверяется и дополняется значениями по умолчанию,
// после чего возвращается заглушка ответа модели. Пустой prompt — 400 BAD_REQUEST.
func HandleComplete(w http.ResponseWriter, r *http.Request) {
	id := requestID(r)

	var raw models.RawCompletionRequest
	if err := decodeBody(w, r, &raw); err != nil {
		logger.Log.Debug("cannot decode request JSON body",
			zap.String("requestId", id),
			zap.Error(err),
		)
		completionsTotal.WithLabelValues(outcomeInvalidBody).Inc()
		writeJSON(w, http.StatusBadRequest, id,
			completion.BuildError(id, completion.CodeBadRequest, decodeMessage(err)))
		return
	}

	req, err := completion.Normalize(raw)
	if err != nil {
		var verr *completion.ValidationError
		if !errors.As(err, &verr) {
			verr = &completion.ValidationError{Code: completion.CodeBadRequest, Message: err.Error()}
		}
		logger.Log.Info("completion request rejected",
			zap.String("requestId", id),
			zap.String("code", verr.Code),
			zap.String("message", verr.Message),
		)
		completionsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, id, completion.BuildError(id, verr.Code, verr.Message))
		return
	}

	summary := completion.Summarize(req.Citations)
	resp := completion.BuildSuccess(id, req, summary)

	logger.Log.Debug("stub completion generated",
		zap.String("requestId", id),
		zap.String("model", req.Model),
		zap.String("locale", req.Locale),
		zap.Float64("temperature", req.Temperature),
		zap.Uint32("maxTokens", req.MaxTokens),
		zap.Int("citations", summary.Count),
	)
	completionsTotal.WithLabelValues(outcomeOK).Inc()
	writeJSON(w, http.StatusOK, id, resp)
}

// requestID берёт идентификатор, определённый middleware, а без него
// определяет его сам по заголовку запроса.
func requestID(r *http.Request) string {
	if id := requestid.FromContext(r.Context()); id != "" {
		return id
	}
	return requestid.Default.Resolve(r.Header.Get(requestid.Header))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	limit := config.MaxBodyBytes
	if limit <= 0 {
		limit = config.DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Тело должно содержать ровно одно JSON-значение.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errTrailingData
		}
		return err
	}
	return nil
}

func decodeMessage(err error) string {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return "request body too large"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	default:
		return "invalid JSON body"
	}
}

func writeJSON(w http.ResponseWriter, status int, id string, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set(requestid.Header, id)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Log.Error("error encoding response", zap.String("requestId", id), zap.Error(err))
	}
}

func writeText(w http.ResponseWriter, status int, id string, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(requestid.Header, id)
	w.WriteHeader(status)

	if _, err := io.WriteString(w, s+"\n"); err != nil {
		logger.Log.Error("error writing response", zap.String("requestId", id), zap.Error(err))
	}
}
