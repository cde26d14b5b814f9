package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqbot/internal/adapter/metrics"
	"faqbot/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChat struct {
	mu       sync.Mutex
	sessions []string
	queries  []string
	reply    domain.Reply
	err      error
}

func (s *stubChat) Handle(_ context.Context, sessionID, query string) (domain.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sessionID)
	s.queries = append(s.queries, query)
	return s.reply, s.err
}

func postAnswer(t *testing.T, h http.Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/get_answer", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == DefaultSessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestGetAnswer(t *testing.T) {
	chat := &stubChat{reply: domain.Reply{
		Answer:     "Sure! Use the reset page.",
		Confidence: 0.83,
		Intent:     "How do I reset my password?",
		Outcome:    domain.OutcomeAnswered,
		Kind:       domain.ReplyAnswered,
	}}
	router := NewServer(chat, 3).Router()

	w := postAnswer(t, router, `{"query":"reset password"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Sure! Use the reset page.", resp["answer"])
	assert.Equal(t, 0.83, resp["confidence"])
	assert.Equal(t, "How do I reset my password?", resp["intent"])
	assert.Equal(t, "answered", resp["outcome"])
	assert.Equal(t, []any{}, resp["suggestions"])

	assert.Equal(t, []string{"reset password"}, chat.queries)
	cookie := sessionCookie(t, w)
	_, err := uuid.Parse(cookie.Value)
	assert.NoError(t, err)
	assert.Equal(t, cookie.Value, chat.sessions[0])
}

func TestGetAnswer_NullIntentAndSuggestions(t *testing.T) {
	chat := &stubChat{reply: domain.Reply{
		Answer:     "I found a few related questions. Did you mean one of these?",
		Confidence: 0.5,
		Outcome:    domain.OutcomeSuggested,
		Kind:       domain.ReplySuggested,
		Suggestions: []domain.Candidate{
			{Question: "A?", Answer: "a", Score: 0.5},
			{Question: "B?", Answer: "b", Score: 0.45},
		},
	}}
	router := NewServer(chat, 3).Router()

	w := postAnswer(t, router, `{"query":"something"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Intent      *string            `json:"intent"`
		Suggestions []domain.Candidate `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.Intent)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "B?", resp.Suggestions[1].Question)
	assert.Contains(t, w.Body.String(), `"intent":null`)
}

func TestGetAnswer_ReusesSession(t *testing.T) {
	chat := &stubChat{reply: domain.Reply{Answer: "ok", Kind: domain.ReplyAnswered}}
	router := NewServer(chat, 1).Router()

	first := postAnswer(t, router, `{"query":"one"}`)
	cookie := sessionCookie(t, first)

	second := postAnswer(t, router, `{"query":"two"}`, cookie)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Empty(t, second.Result().Cookies())
	assert.Equal(t, []string{cookie.Value, cookie.Value}, chat.sessions)

	// a forged cookie is replaced
	bad := &http.Cookie{Name: DefaultSessionCookie, Value: "not-a-uuid"}
	third := postAnswer(t, router, `{"query":"three"}`, bad)
	assert.NotEqual(t, "not-a-uuid", sessionCookie(t, third).Value)
}

func TestGetAnswer_BadRequest(t *testing.T) {
	chat := &stubChat{}
	router := NewServer(chat, 1).Router()

	w := postAnswer(t, router, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, chat.queries)
}

func TestGetAnswer_ChatError(t *testing.T) {
	chat := &stubChat{err: errors.New("redis down")}
	router := NewServer(chat, 1).Router()

	w := postAnswer(t, router, `{"query":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis down")
}

func TestHealthz(t *testing.T) {
	router := NewServer(&stubChat{}, 42).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","entries":42}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	chat := &stubChat{reply: domain.Reply{Answer: "hi", Kind: domain.ReplyRule, Confidence: 1}}
	router := NewServer(chat, 1, WithMetrics(m)).Router()

	postAnswer(t, router, `{"query":"hello"}`)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `faqbot_replies_total{kind="rule"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	router := NewServer(&stubChat{}, 1).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>faqbot</h1>"), 0644))

	router := NewServer(&stubChat{}, 1, WithStaticDir(dir)).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "faqbot"))
}

func TestSessionLocks(t *testing.T) {
	locks := newSessionLocks()

	unlock := locks.lock("a")
	assert.Equal(t, 1, locks.len())

	acquired := make(chan struct{})
	go func() {
		u := locks.lock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	default:
	}

	unlock()
	<-acquired

	// other sessions never block
	locks.lock("b")()
	assert.Eventually(t, func() bool { return locks.len() == 0 }, time.Second, 10*time.Millisecond)
}
