package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sol1corejz/llm-gateway/internal/models"
	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedID = `^req_[0-9a-f]{24}$`

func postComplete(t *testing.T, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/complete", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	HandleComplete(rr, req)
	return rr
}

func decodeSuccess(t *testing.T, rr *httptest.ResponseRecorder) models.CompletionResponse {
	t.Helper()

	var resp models.CompletionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestid.Header, "health-check-01")
	rr := httptest.NewRecorder()

	HandleHealthz(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "health-check-01", rr.Header().Get(requestid.Header))
}

func TestHandleRoot(t *testing.T) {
	rr := httptest.NewRecorder()
	HandleRoot(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "llm-gateway stub\n", rr.Body.String())
	assert.Regexp(t, generatedID, rr.Header().Get(requestid.Header))
}

func TestHandleCompleteDefaults(t *testing.T) {
	before := testutil.ToFloat64(completionsTotal.WithLabelValues(outcomeOK))

	rr := postComplete(t, `{"prompt":"hi"}`, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	resp := decodeSuccess(t, rr)
	assert.Equal(t, rr.Header().Get(requestid.Header), resp.RequestID)
	assert.Regexp(t, generatedID, resp.RequestID)
	assert.Equal(t, models.Usage{
		Model:       "stub",
		Locale:      "ru-RU",
		Temperature: 0.7,
		MaxTokens:   1024,
		Citations:   0,
		Stub:        true,
	}, resp.Usage)
	assert.Equal(t,
		"stub: completion generated (model=stub, locale=ru-RU, temperature=0.7, maxTokens=1024, citations=0, preview=[])",
		resp.Text)
	assert.Equal(t, before+1, testutil.ToFloat64(completionsTotal.WithLabelValues(outcomeOK)))
}

func TestHandleCompleteUsageJSONShape(t *testing.T) {
	rr := postComplete(t, `{"prompt":"hi","model":"gemini","maxTokens":0,"temperature":-1}`, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, map[string]any{
		"model":       "gemini",
		"locale":      "ru-RU",
		"temperature": float64(-1),
		"maxTokens":   float64(0),
		"citations":   float64(0),
		"stub":        true,
	}, raw["usage"])
}

func TestHandleCompleteBadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "blank prompt", body: `{"prompt":"  "}`, message: "prompt is required"},
		{name: "missing prompt", body: `{"model":"x"}`, message: "prompt is required"},
		{name: "malformed json", body: `{"prompt":`, message: "invalid JSON body"},
		{name: "wrong type", body: `{"prompt":42}`, message: "invalid JSON body"},
		{name: "negative maxTokens", body: `{"prompt":"hi","maxTokens":-1}`, message: "invalid JSON body"},
		{name: "empty body", body: ``, message: "request body is empty"},
		{name: "citation without url", body: `{"prompt":"hi","citations":[{"title":"t","snippet":"s"}]}`, message: "invalid JSON body"},
		{name: "citation without snippet", body: `{"prompt":"hi","citations":[{"url":"https://a","title":"t"}]}`, message: "invalid JSON body"},
		{name: "citation with null snippet", body: `{"prompt":"hi","citations":[{"url":"https://a","snippet":null}]}`, message: "invalid JSON body"},
		{name: "trailing garbage", body: `{"prompt":"hi"} garbage`, message: "invalid JSON body"},
		{name: "second JSON value", body: `{"prompt":"hi"}{"prompt":"again"}`, message: "invalid JSON body"},
		{name: "unterminated second value", body: `{"prompt":"hi"} {`, message: "invalid JSON body"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rr := postComplete(t, test.body, map[string]string{requestid.Header: "caller-supplied-id"})

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "caller-supplied-id", rr.Header().Get(requestid.Header))

			resp := decodeError(t, rr)
			assert.Equal(t, "caller-supplied-id", resp.RequestID)
			assert.Equal(t, "BAD_REQUEST", resp.Code)
			assert.Equal(t, test.message, resp.Message)
		})
	}
}

func TestHandleCompleteShortRequestID(t *testing.T) {
	rr := postComplete(t, `{"prompt":"hi"}`, map[string]string{requestid.Header: "short"})

	require.Equal(t, http.StatusOK, rr.Code)
	id := rr.Header().Get(requestid.Header)
	assert.NotEqual(t, "short", id)
	assert.Regexp(t, generatedID, id)
	assert.Equal(t, id, decodeSuccess(t, rr).RequestID)
}

func TestHandleCompleteCitations(t *testing.T) {
	var cits []string
	for i := 1; i <= 5; i++ {
		cits = append(cits, fmt.Sprintf(`{"url":"https://s/%d","title":"t%d","snippet":"s%d"}`, i, i, i))
	}
	body := `{"prompt":"hi","citations":[` + strings.Join(cits, ",") + `]}`

	rr := postComplete(t, body, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decodeSuccess(t, rr)
	assert.Equal(t, 5, resp.Usage.Citations)
	assert.Contains(t, resp.Text,
		`citations=5, preview=["t1 | https://s/1 | s1", "t2 | https://s/2 | s2", "t3 | https://s/3 | s3"])`)
	assert.NotContains(t, resp.Text, "https://s/4")
}

func TestHandleCompleteUnescapedText(t *testing.T) {
	body := `{"prompt":"hi","citations":[{"url":"https://a?x=1&y=<2>","snippet":"привет"}]}`
	rr := postComplete(t, body, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Contains(t, rr.Body.String(), "https://a?x=1&y=<2>")
	assert.Contains(t, decodeSuccess(t, rr).Text, "untitled | https://a?x=1&y=<2> | привет")
}

func TestHandleCompleteBodyTooLarge(t *testing.T) {
	body := `{"prompt":"` + strings.Repeat("a", 2<<20) + `"}`
	rr := postComplete(t, body, nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "request body too large", decodeError(t, rr).Message)
}

func BenchmarkHandleComplete(b *testing.B) {
	requestBody := []byte(`{"prompt":"hello","citations":[{"url":"https://example.com","snippet":"text"}]}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/complete", bytes.NewReader(requestBody))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		HandleComplete(w, req)

		if w.Code != http.StatusOK {
			b.Errorf("unexpected status code: got %d, want %d", w.Code, http.StatusOK)
		}
	}
}

func TestHandleCompleteTrailingWhitespace(t *testing.T) {
	rr := postComplete(t, "{\"prompt\":\"hi\"}\n\t  \n", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Regexp(t, generatedID, decodeSuccess(t, rr).RequestID)
}
