package domain

import (
	"context"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
)

// Messenger delivers messages to individual subjects.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, messages []gateway.Message) error
	Push(ctx context.Context, subjectID string, messages []gateway.Message) error
}

// GroupNotifier delivers messages to a recipient group.
type GroupNotifier interface {
	NotifyGroup(ctx context.Context, group string, messages []gateway.Message) error
}

// ProfileSource resolves a subject's display name.
type ProfileSource interface {
	Profile(ctx context.Context, subjectID string) (string, error)
}
