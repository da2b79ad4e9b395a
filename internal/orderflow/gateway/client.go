package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/louisbranch/orderlink/internal/platform/timeouts"
)

const (
	replyPath     = "/v2/bot/message/reply"
	pushPath      = "/v2/bot/message/push"
	multicastPath = "/v2/bot/message/multicast"
	profilePath   = "/v2/bot/profile/"

	maxErrorBodyBytes = 4 << 10
)

// ErrChannelTokenRequired indicates the client is missing transport credentials.
var ErrChannelTokenRequired = errors.New("channel token is required")

// ClientConfig configures the messaging transport client.
type ClientConfig struct {
	// BaseURL is the transport API origin, e.g. https://api.line.me.
	BaseURL string
	// ChannelToken is the bearer token for every transport call.
	ChannelToken string
	// MaxAttempts bounds retries for transient failures.
	MaxAttempts int
	// BaseDelay seeds the exponential backoff schedule
	// (baseDelay * 2^(attempt-1)).
	BaseDelay time.Duration
}

// Client sends messages through the chat platform's HTTPS API with
// bounded per-attempt timeouts and exponential-backoff retries.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient constructs a transport client.
func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.line.me"
	}
	token := strings.TrimSpace(cfg.ChannelToken)
	if token == "" {
		return nil, ErrChannelTokenRequired
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{},
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}, nil
}

// Reply sends messages tied to a single-use reply token. A rejected token is
// reported as InvalidReplyTokenError and never retried; retrying a reply
// after its token invalidates cannot succeed.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []Message) error {
	replyToken = strings.TrimSpace(replyToken)
	if replyToken == "" {
		return &InvalidReplyTokenError{Status: 0, Body: "reply token is empty"}
	}
	err := c.postWithRetry(ctx, replyPath, map[string]any{
		"replyToken": replyToken,
		"messages":   Normalize(messages),
	})
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusBadRequest {
		return &InvalidReplyTokenError{Status: statusErr.Status, Body: statusErr.Body}
	}
	return err
}

// Push sends messages directly to one subject.
func (c *Client) Push(ctx context.Context, subjectID string, messages []Message) error {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	return c.postWithRetry(ctx, pushPath, map[string]any{
		"to":       subjectID,
		"messages": Normalize(messages),
	})
}

// Multicast sends messages to many subjects in one transport call. The call
// is all-or-nothing: a single failure is reported for the whole batch with
// no partial-success information.
func (c *Client) Multicast(ctx context.Context, subjectIDs []string, messages []Message) error {
	if len(subjectIDs) == 0 {
		return fmt.Errorf("at least one subject id is required")
	}
	return c.postWithRetry(ctx, multicastPath, map[string]any{
		"to":       subjectIDs,
		"messages": Normalize(messages),
	})
}

// Profile returns the display name for one subject.
func (c *Client) Profile(ctx context.Context, subjectID string) (string, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", fmt.Errorf("subject id is required")
	}

	var displayName string
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeouts.Transport)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+profilePath+subjectID, nil)
		if err != nil {
			return fmt.Errorf("build profile request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return &StatusError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
		}

		var payload struct {
			DisplayName string `json:"displayName"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return fmt.Errorf("decode profile response: %w", err)
		}
		displayName = payload.DisplayName
		return nil
	}

	if err := c.retry(ctx, attempt); err != nil {
		return "", err
	}
	return displayName, nil
}

func (c *Client) postWithRetry(ctx context.Context, path string, payload any) error {
	if len(messagesOf(payload)) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode transport payload: %w", err)
	}

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeouts.Transport)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build transport request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			return &StatusError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return c.retry(ctx, attempt)
}

// retry runs attempt with exponential backoff. Terminal statuses abort
// immediately; exhausting the attempt budget on transient failures is
// reported as DeliveryExhaustedError carrying the last status and body.
func (c *Client) retry(ctx context.Context, attempt func() error) error {
	attempts := 0
	operation := func() (struct{}, error) {
		attempts++
		err := attempt()
		if err == nil {
			return struct{}{}, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = c.baseDelay
	schedule.RandomizationFactor = 0
	schedule.Multiplier = 2

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(schedule),
		backoff.WithMaxTries(uint(c.maxAttempts)),
	)
	if err == nil {
		return nil
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && !statusErr.Retryable() {
		return err
	}
	exhausted := &DeliveryExhaustedError{Attempts: attempts, Err: err}
	if errors.As(err, &statusErr) {
		exhausted.Status = statusErr.Status
		exhausted.Body = statusErr.Body
	}
	return exhausted
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}

func messagesOf(payload any) []Message {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	messages, _ := m["messages"].([]Message)
	return messages
}
