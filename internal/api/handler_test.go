package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/luminalights/lumina/internal/anthropic"
	"github.com/luminalights/lumina/internal/pipeline"
	"github.com/luminalights/lumina/internal/ratelimit"
	"github.com/luminalights/lumina/internal/storage"
)

const testToken = "test-token"

type fakeLLM struct {
	reply *anthropic.Reply
	err   error
	calls int
}

func (f *fakeLLM) Send(ctx context.Context, system string, messages []anthropic.Message) (*anthropic.Reply, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func okReply() *anthropic.Reply {
	return &anthropic.Reply{
		JSON: map[string]any{
			"intent":       "lighting_command",
			"responseText": "Done.",
		},
		Usage: anthropic.Usage{InputTokens: 100, OutputTokens: 20},
		Model: "claude-3-5-haiku-20241022",
	}
}

func newTestServer(t *testing.T, llm *fakeLLM) (*httptest.Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	limiter := ratelimit.New(store, time.Minute, 20)
	p := pipeline.New(limiter, store, llm, 4)

	srv := httptest.NewServer(NewHandler(Deps{Pipeline: p, Store: store, Token: testToken}))
	t.Cleanup(srv.Close)
	return srv, store
}

func doRequest(t *testing.T, method, url, userID string, body []byte) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeBody(t, resp, &body)
	return body.Error.Code
}

const commandBody = `{"transcribedText":"lights off","deviceConfig":{"totalPixels":100}}`

func TestHealthOpenWithoutAuth(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: okReply()})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: okReply()})

	resp, err := http.Post(srv.URL+"/v1/command", "application/json", bytes.NewBufferString(commandBody))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "unauthenticated" {
		t.Errorf("code = %q, want unauthenticated", code)
	}
}

func TestCommandRequiresUserID(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: okReply()})

	resp := doRequest(t, "POST", srv.URL+"/v1/command", "", []byte(commandBody))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCommandSuccess(t *testing.T) {
	llm := &fakeLLM{reply: okReply()}
	srv, store := newTestServer(t, llm)

	resp := doRequest(t, "POST", srv.URL+"/v1/command", "alice", []byte(commandBody))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Intent       string `json:"intent"`
		ResponseText string `json:"responseText"`
	}
	decodeBody(t, resp, &body)
	if body.Intent != "lighting_command" || body.ResponseText != "Done." {
		t.Errorf("body = %+v", body)
	}
	if llm.calls != 1 {
		t.Errorf("model calls = %d, want 1", llm.calls)
	}

	// The call left exactly one usage record behind.
	records, err := store.RecentUsage(context.Background(), "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Status != "success" {
		t.Errorf("records = %+v", records)
	}
}

func TestCommandErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		llmErr *anthropic.ClientError
		status int
		code   string
	}{
		{"auth", &anthropic.ClientError{Kind: anthropic.KindAuthentication}, 412, "failed-precondition"},
		{"overloaded", &anthropic.ClientError{Kind: anthropic.KindOverloaded, Retryable: true}, 503, "unavailable"},
		{"rate limited upstream", &anthropic.ClientError{Kind: anthropic.KindRateLimit, Retryable: true}, 503, "unavailable"},
		{"timeout", &anthropic.ClientError{Kind: anthropic.KindTimeout, Retryable: true}, 500, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &fakeLLM{err: tc.llmErr})

			resp := doRequest(t, "POST", srv.URL+"/v1/command", "alice", []byte(commandBody))
			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			if code := errorCode(t, resp); code != tc.code {
				t.Errorf("code = %q, want %q", code, tc.code)
			}
		})
	}
}

func TestCommandInvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: okReply()})

	resp := doRequest(t, "POST", srv.URL+"/v1/command", "alice", []byte(`{"transcribedText":""}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "invalid-argument" {
		t.Errorf("code = %q, want invalid-argument", code)
	}
}

func TestVarietyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	body := []byte(`{"days":["monday","tuesday","wednesday"],"config":{"themeColors":[[255,0,0],[0,0,255]]}}`)
	resp := doRequest(t, "POST", srv.URL+"/v1/variety", "alice", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out struct {
		Plan []struct {
			DayLabel string `json:"dayLabel"`
			EffectID int    `json:"effectId"`
		} `json:"plan"`
	}
	decodeBody(t, resp, &out)
	if len(out.Plan) != 3 {
		t.Fatalf("plan = %d entries, want 3", len(out.Plan))
	}
	for i := 1; i < len(out.Plan); i++ {
		if out.Plan[i].EffectID == out.Plan[i-1].EffectID {
			t.Errorf("plan repeats effect %d on consecutive days", out.Plan[i].EffectID)
		}
	}

	// Empty and oversized day lists are rejected.
	resp = doRequest(t, "POST", srv.URL+"/v1/variety", "alice", []byte(`{"days":[]}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty days status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFavoritesLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	payload := []byte(`{"effect":2,"colors":[[255,180,100]],"brightness":140}`)
	resp := doRequest(t, "PUT", srv.URL+"/v1/favorites/cozy", "alice", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, "GET", srv.URL+"/v1/favorites", "alice", nil)
	var favorites []struct {
		Name    string          `json:"name"`
		Payload json.RawMessage `json:"payload"`
	}
	decodeBody(t, resp, &favorites)
	if len(favorites) != 1 || favorites[0].Name != "cozy" {
		t.Fatalf("favorites = %+v", favorites)
	}
	if !bytes.Equal(favorites[0].Payload, payload) {
		t.Errorf("payload = %s, want %s", favorites[0].Payload, payload)
	}

	// Another user sees nothing.
	resp = doRequest(t, "GET", srv.URL+"/v1/favorites", "bob", nil)
	var other []json.RawMessage
	decodeBody(t, resp, &other)
	if len(other) != 0 {
		t.Errorf("bob's favorites = %d, want 0", len(other))
	}

	resp = doRequest(t, "DELETE", srv.URL+"/v1/favorites/cozy", "alice", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doRequest(t, "DELETE", srv.URL+"/v1/favorites/cozy", "alice", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestFavoritesRejectInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	resp := doRequest(t, "PUT", srv.URL+"/v1/favorites/bad", "alice", []byte(`{not json`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUsageEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{reply: okReply()})

	resp := doRequest(t, "POST", srv.URL+"/v1/command", "alice", []byte(commandBody))
	resp.Body.Close()

	resp = doRequest(t, "GET", srv.URL+"/v1/usage", "alice", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var records []struct {
		Status      string `json:"status"`
		InputTokens int    `json:"inputTokens"`
		Model       string `json:"model"`
	}
	decodeBody(t, resp, &records)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Status != "success" || records[0].InputTokens != 100 {
		t.Errorf("record = %+v", records[0])
	}
}
