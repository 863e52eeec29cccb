package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/valpere/keytrans/internal/translator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCompleter stands in for the upstream chat-completion API.
type stubCompleter struct {
	calls   int32
	content string
	err     error
	echo    bool
	lastReq atomic.Value
}

func (s *stubCompleter) Complete(ctx context.Context, req translator.CompletionRequest) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	s.lastReq.Store(req)
	if s.err != nil {
		return "", s.err
	}
	if s.echo {
		b, _ := json.Marshal(map[string]interface{}{"translation": req.User, "keywords": []string{}})
		return string(b), nil
	}
	return s.content, nil
}

func newTestRouter(c translator.Completer) *gin.Engine {
	svc := translator.NewService(c, translator.Options{JSONMode: true}, zap.NewNop())
	return New(svc, zap.NewNop())
}

func postTranslate(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/translate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return body
}

func TestTranslate_Success(t *testing.T) {
	stub := &stubCompleter{content: `{"translation": "Hello", "keywords": ["a", "b", "c"]}`}
	r := newTestRouter(stub)

	w := postTranslate(r, `{"text": "你好"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp translator.TranslateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Translation != "Hello" {
		t.Errorf("expected 'Hello', got %q", resp.Translation)
	}
	if !reflect.DeepEqual(resp.Keywords, []string{"a", "b", "c"}) {
		t.Errorf("expected [a b c], got %v", resp.Keywords)
	}
}

func TestTranslate_NonJSONUpstream(t *testing.T) {
	stub := &stubCompleter{content: "this is not json"}
	r := newTestRouter(stub)

	w := postTranslate(r, `{"text": "你好"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeBody(t, w)
	detail, _ := body["detail"].(string)
	if detail == "" {
		t.Errorf("expected non-empty detail, got %v", body)
	}
}

func TestTranslate_WrappedReplyRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "code fence", content: "```json\n{\"translation\": \"Hi\", \"keywords\": [\"a\"]}\n```"},
		{name: "lead-in prose", content: `Here is the JSON: {"translation": "Hi", "keywords": ["a"]}`},
		{name: "reasoning block", content: `<think>easy</think>{"translation": "Hi", "keywords": ["a"]}`},
		{name: "null translation", content: `{"translation": null, "keywords": ["a"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubCompleter{content: tt.content})

			w := postTranslate(r, `{"text": "嗨"}`)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
			}
			if detail, _ := decodeBody(t, w)["detail"].(string); detail == "" {
				t.Error("expected non-empty detail")
			}
		})
	}
}

func TestTranslate_WrappedReplyAcceptedWhenLenient(t *testing.T) {
	stub := &stubCompleter{content: "```json\n{\"translation\": \"Hi\", \"keywords\": [\"a\"]}\n```"}
	svc := translator.NewService(stub, translator.Options{JSONMode: true, LenientParse: true}, zap.NewNop())
	r := New(svc, zap.NewNop())

	w := postTranslate(r, `{"text": "嗨"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["translation"] != "Hi" {
		t.Errorf("expected 'Hi', got %v", body["translation"])
	}
}

func TestNew_LeavesGinModeAlone(t *testing.T) {
	newTestRouter(&stubCompleter{})

	if gin.Mode() != gin.TestMode {
		t.Errorf("expected gin mode %q, got %q", gin.TestMode, gin.Mode())
	}
}

func TestTranslate_MissingKeywords(t *testing.T) {
	stub := &stubCompleter{content: `{"translation": "Hi"}`}
	r := newTestRouter(stub)

	w := postTranslate(r, `{"text": "嗨"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, `"keywords":[]`) {
		t.Errorf("expected keywords encoded as empty array, got %s", got)
	}
	body := decodeBody(t, w)
	if body["translation"] != "Hi" {
		t.Errorf("expected 'Hi', got %v", body["translation"])
	}
}

func TestTranslate_TransportFailure_SingleAttempt(t *testing.T) {
	stub := &stubCompleter{err: errors.New("dial tcp 10.0.0.1:443: connect: connection refused")}
	r := newTestRouter(stub)

	w := postTranslate(r, `{"text": "你好"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if detail, _ := body["detail"].(string); !strings.Contains(detail, "connection refused") {
		t.Errorf("expected stringified failure reason in detail, got %v", body["detail"])
	}
	if n := atomic.LoadInt32(&stub.calls); n != 1 {
		t.Errorf("expected exactly 1 upstream attempt, got %d", n)
	}
}

func TestTranslate_EmptyTextAccepted(t *testing.T) {
	stub := &stubCompleter{content: `{"translation": "", "keywords": []}`}
	r := newTestRouter(stub)

	w := postTranslate(r, `{"text": ""}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty text, got %d: %s", w.Code, w.Body.String())
	}
	if n := atomic.LoadInt32(&stub.calls); n != 1 {
		t.Errorf("expected empty text to be forwarded upstream, got %d calls", n)
	}
	req := stub.lastReq.Load().(translator.CompletionRequest)
	if !strings.Contains(req.User, "Text: \n") {
		t.Errorf("expected empty text embedded in prompt, got %q", req.User)
	}
}

func TestTranslate_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing text", body: `{}`},
		{name: "null text", body: `{"text": null}`},
		{name: "non-string text", body: `{"text": 42}`},
		{name: "malformed json", body: `{"text": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubCompleter{content: `{}`}
			r := newTestRouter(stub)

			w := postTranslate(r, tt.body)

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("expected 422, got %d", w.Code)
			}
			if n := atomic.LoadInt32(&stub.calls); n != 0 {
				t.Errorf("expected no upstream call, got %d", n)
			}
			body := decodeBody(t, w)
			if detail, _ := body["detail"].(string); detail == "" {
				t.Errorf("expected detail, got %v", body)
			}
		})
	}
}

func TestTranslate_ConcurrentRequestsIndependent(t *testing.T) {
	stub := &stubCompleter{echo: true}
	r := newTestRouter(stub)

	const n = 24
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("unique-text-%d", i)
			w := postTranslate(r, fmt.Sprintf(`{"text": %q}`, text))
			if w.Code != http.StatusOK {
				errs <- fmt.Errorf("request %d: status %d", i, w.Code)
				return
			}
			var resp translator.TranslateResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				errs <- err
				return
			}
			if !strings.Contains(resp.Translation, "Text: "+text+"\n") {
				errs <- fmt.Errorf("request %d got another request's data: %q", i, resp.Translation)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestTranslate_AgainstOpenAICompatibleUpstream(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": `{"translation": "Hello", "keywords": ["greeting"]}`},
				"finish_reason": "stop",
			}},
		})
	}))
	defer upstream.Close()

	c := translator.NewOpenAICompleter("test-key", upstream.URL, "test-model", time.Second)
	r := newTestRouter(c)

	w := postTranslate(r, `{"text": "你好"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["translation"] != "Hello" {
		t.Errorf("expected 'Hello', got %v", body["translation"])
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestTranslate_UpstreamErrorStatus(t *testing.T) {
	var hits int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key", "type": "auth_error"}}`))
	}))
	defer upstream.Close()

	c := translator.NewOpenAICompleter("bad-key", upstream.URL, "test-model", time.Second)
	r := newTestRouter(c)

	w := postTranslate(r, `{"text": "你好"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body)
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestRouter(&stubCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/translate", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "POST") {
		t.Errorf("expected POST in allowed methods, got %q", got)
	}
}

func TestCORS_SimpleRequest(t *testing.T) {
	r := newTestRouter(&stubCompleter{content: `{"translation": "Hi"}`})

	req := httptest.NewRequest(http.MethodPost, "/translate", bytes.NewBufferString(`{"text": "嗨"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://any.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://any.example.org" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(&stubCompleter{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("expected a generated request ID")
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("expected incoming request ID to be kept, got %q", got)
	}
}
