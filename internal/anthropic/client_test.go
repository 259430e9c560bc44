package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		APIKey:  "test-key",
		Model:   "claude-3-5-haiku-20241022",
		BaseURL: srv.URL,
	})

	// Record backoff sleeps instead of waiting them out.
	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	c.jitter = func() float64 { return 0.5 }
	return c, &sleeps
}

func TestSendSuccess(t *testing.T) {
	var gotAuth, gotVersion string
	var gotBody messagesRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"content": [{"type":"text","text":"{\"intent\":\"lighting_command\"}"}],
			"model": "claude-3-5-haiku-20241022",
			"usage": {"input_tokens": 512, "output_tokens": 64}
		}`))
	})

	reply, err := c.Send(context.Background(), "system prompt", []Message{{Role: "user", Content: "make it blue"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "test-key" {
		t.Errorf("x-api-key = %q, want test-key", gotAuth)
	}
	if gotVersion != "2023-06-01" {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotBody.System != "system prompt" || len(gotBody.Messages) != 1 {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want default 1024", gotBody.MaxTokens)
	}

	if reply.JSON == nil || reply.JSON["intent"] != "lighting_command" {
		t.Errorf("reply JSON = %v", reply.JSON)
	}
	if reply.Usage.InputTokens != 512 || reply.Usage.OutputTokens != 64 {
		t.Errorf("usage = %+v", reply.Usage)
	}
	if reply.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("model = %q", reply.Model)
	}
}

func TestSendConcatenatesTextBlocks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"content": [
				{"type":"text","text":"{\"intent\":"},
				{"type":"tool_use","text":"ignored"},
				{"type":"text","text":"\"off_topic\"}"}
			],
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`))
	})

	reply, err := c.Send(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != `{"intent":"off_topic"}` {
		t.Errorf("text = %q", reply.Text)
	}
	if reply.JSON["intent"] != "off_topic" {
		t.Errorf("JSON = %v", reply.JSON)
	}
}

// A persistently overloaded endpoint is tried exactly 3 times with doubling
// backoff, then surfaces the classified error.
func TestSendRetriesOverloaded(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(529)
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"Overloaded"}}`))
	})

	_, err := c.Send(context.Background(), "", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %d, want 2 (never after the last attempt)", len(*sleeps))
	}
	// jitter stub returns 0.5, so delay = base * 1.05 exactly.
	if (*sleeps)[0] != 1050*time.Millisecond {
		t.Errorf("first delay = %v, want 1.05s", (*sleeps)[0])
	}
	if (*sleeps)[1] != 2100*time.Millisecond {
		t.Errorf("second delay = %v, want 2.1s", (*sleeps)[1])
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *ClientError", err)
	}
	if ce.Kind != KindOverloaded || !ce.Retryable {
		t.Errorf("error = %+v, want retryable overloaded", ce)
	}
	if ce.Message != "overloaded_error: Overloaded" {
		t.Errorf("message = %q", ce.Message)
	}
}

func TestSendRetries429(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Send(context.Background(), "", nil)
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Kind != KindRateLimit {
		t.Fatalf("error = %v, want rate_limit", err)
	}
	if attempts != 3 || len(*sleeps) != 2 {
		t.Errorf("attempts = %d sleeps = %d, want 3 and 2", attempts, len(*sleeps))
	}
}

// Authentication failures are terminal: one attempt, no sleeps.
func TestSendDoesNotRetryAuth(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := c.Send(context.Background(), "", nil)
	var ce *ClientError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *ClientError", err)
	}
	if ce.Kind != KindAuthentication || ce.Retryable {
		t.Errorf("error = %+v, want terminal authentication", ce)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(*sleeps) != 0 {
		t.Errorf("sleeps = %d, want 0", len(*sleeps))
	}
}

func TestSendDoesNotRetryBadRequest(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Send(context.Background(), "", nil)
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Kind != KindInvalidRequest || ce.Retryable {
		t.Fatalf("error = %v, want terminal invalid_request", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestSendMissingAPIKey(t *testing.T) {
	c := NewClient(Config{Model: "claude-3-5-haiku-20241022"})

	_, err := c.Send(context.Background(), "", nil)
	var ce *ClientError
	if !errors.As(err, &ce) || ce.Kind != KindAuthentication {
		t.Fatalf("error = %v, want authentication", err)
	}
}

// Success after a transient failure returns the reply, not the earlier error.
func TestSendRecoversMidRetry(t *testing.T) {
	attempts := 0
	c, sleeps := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":1,"output_tokens":1}}`))
	})

	reply, err := c.Send(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != "ok" {
		t.Errorf("text = %q, want ok", reply.Text)
	}
	if reply.JSON != nil {
		t.Error("non-JSON reply should leave JSON nil")
	}
	if attempts != 2 || len(*sleeps) != 1 {
		t.Errorf("attempts = %d sleeps = %d, want 2 and 1", attempts, len(*sleeps))
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status    int
		kind      ErrorKind
		retryable bool
	}{
		{401, KindAuthentication, false},
		{429, KindRateLimit, true},
		{500, KindOverloaded, true},
		{503, KindOverloaded, true},
		{529, KindOverloaded, true},
		{400, KindInvalidRequest, false},
		{418, KindUnknown, false},
	}
	for _, tc := range cases {
		e := classifyStatus(tc.status, "msg")
		if e.Kind != tc.kind || e.Retryable != tc.retryable {
			t.Errorf("status %d = %s/%v, want %s/%v", tc.status, e.Kind, e.Retryable, tc.kind, tc.retryable)
		}
	}
}

func TestClassifyTransport(t *testing.T) {
	e := classifyTransport(context.DeadlineExceeded)
	if e.Kind != KindTimeout || !e.Retryable {
		t.Errorf("deadline = %+v, want retryable timeout", e)
	}

	e = classifyTransport(errors.New("connection refused"))
	if e.Kind != KindOverloaded || !e.Retryable {
		t.Errorf("conn failure = %+v, want retryable overloaded", e)
	}
}
