package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// GroupAdministrators is the recipient group for operational alerts.
const GroupAdministrators = "administrators"

// Transport delivers messages to the chat platform.
type Transport interface {
	Reply(ctx context.Context, replyToken string, messages []Message) error
	Push(ctx context.Context, subjectID string, messages []Message) error
	Multicast(ctx context.Context, subjectIDs []string, messages []Message) error
	Profile(ctx context.Context, subjectID string) (string, error)
}

// Directory resolves recipient groups to subject IDs.
type Directory interface {
	SubjectIDs(ctx context.Context, group string) ([]string, error)
}

// Gateway routes outbound notifications through a Transport, degrading
// group multicasts to individual pushes when the batch call fails.
type Gateway struct {
	transport Transport
	directory Directory
	logf      func(format string, args ...any)
}

// New constructs a Gateway.
func New(transport Transport, directory Directory) *Gateway {
	return &Gateway{
		transport: transport,
		directory: directory,
		logf:      log.Printf,
	}
}

// Reply sends messages tied to a reply token.
func (g *Gateway) Reply(ctx context.Context, replyToken string, messages []Message) error {
	if g == nil || g.transport == nil {
		return fmt.Errorf("gateway transport is not configured")
	}
	return g.transport.Reply(ctx, replyToken, messages)
}

// Push sends messages directly to one subject.
func (g *Gateway) Push(ctx context.Context, subjectID string, messages []Message) error {
	if g == nil || g.transport == nil {
		return fmt.Errorf("gateway transport is not configured")
	}
	return g.transport.Push(ctx, subjectID, messages)
}

// Profile returns the display name for one subject.
func (g *Gateway) Profile(ctx context.Context, subjectID string) (string, error) {
	if g == nil || g.transport == nil {
		return "", fmt.Errorf("gateway transport is not configured")
	}
	return g.transport.Profile(ctx, subjectID)
}

// NotifyGroup delivers messages to every member of a group. It tries one
// multicast first; if the batch call fails it falls back to pushing each
// member individually, continuing past per-member failures so one bad
// recipient cannot starve the rest. Delivery failures after the fallback
// are logged, not returned: group notification is best effort.
func (g *Gateway) NotifyGroup(ctx context.Context, group string, messages []Message) error {
	if g == nil || g.transport == nil {
		return fmt.Errorf("gateway transport is not configured")
	}
	if g.directory == nil {
		return fmt.Errorf("gateway directory is not configured")
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return fmt.Errorf("group is required")
	}

	subjectIDs, err := g.directory.SubjectIDs(ctx, group)
	if err != nil {
		return fmt.Errorf("resolve group %q: %w", group, err)
	}
	if len(subjectIDs) == 0 {
		g.logf("notify group %q: no recipients", group)
		return nil
	}

	if err := g.transport.Multicast(ctx, subjectIDs, messages); err == nil {
		return nil
	} else {
		g.logf("notify group %q: multicast failed, degrading to individual push: %v", group, err)
	}

	for _, subjectID := range subjectIDs {
		if err := g.transport.Push(ctx, subjectID, messages); err != nil {
			g.logf("notify group %q: push to %s failed: %v", group, subjectID, err)
		}
	}
	return nil
}
