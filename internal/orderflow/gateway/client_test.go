package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:      baseURL,
		ChannelToken: "test-token",
		MaxAttempts:  3,
		BaseDelay:    time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{BaseURL: "https://example.com"})
	if !errors.Is(err, ErrChannelTokenRequired) {
		t.Fatalf("err = %v, want ErrChannelTokenRequired", err)
	}
}

func TestClientPushSendsBearerAndPayload(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.Push(context.Background(), "user-1", []Message{Text("hello")}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
	if gotPath != "/v2/bot/message/push" {
		t.Errorf("path = %q, want /v2/bot/message/push", gotPath)
	}
	if gotBody["to"] != "user-1" {
		t.Errorf("to = %v, want user-1", gotBody["to"])
	}
}

func TestClientPushRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.Push(context.Background(), "user-1", []Message{Text("hello")}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientPushExhaustsRetryBudget(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Push(context.Background(), "user-1", []Message{Text("hello")})

	var exhausted *DeliveryExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want DeliveryExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if exhausted.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", exhausted.Status)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestClientPushTerminalStatusNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Push(context.Background(), "user-1", []Message{Text("hello")})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if statusErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", statusErr.Status)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClientReplyInvalidToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.Reply(context.Background(), "stale-token", []Message{Text("hello")})

	var invalid *InvalidReplyTokenError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidReplyTokenError", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestClientReplyEmptyToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://example.invalid")
	err := client.Reply(context.Background(), "  ", []Message{Text("hello")})

	var invalid *InvalidReplyTokenError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidReplyTokenError", err)
	}
}

func TestClientMulticastRequiresRecipients(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://example.invalid")
	if err := client.Multicast(context.Background(), nil, []Message{Text("hello")}); err == nil {
		t.Fatal("Multicast with no recipients, want error")
	}
}

func TestClientPushRequiresMessages(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "https://example.invalid")
	if err := client.Push(context.Background(), "user-1", nil); err == nil {
		t.Fatal("Push with no messages, want error")
	}
}

func TestClientProfile(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/bot/profile/user-1" {
			t.Errorf("path = %q, want /v2/bot/profile/user-1", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"displayName": "Alex"})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	name, err := client.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if name != "Alex" {
		t.Errorf("displayName = %q, want Alex", name)
	}
}

func TestClientProfileNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Profile(context.Background(), "user-1")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if statusErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", statusErr.Status)
	}
}
