package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/render"
	"github.com/louisbranch/orderlink/internal/platform/id"
)

// CorrelationWriter records newly minted correlation entries.
type CorrelationWriter interface {
	Put(ctx context.Context, entry CorrelationEntry) error
}

// IntakeConfig wires an Intake coordinator.
type IntakeConfig struct {
	Correlations CorrelationWriter
	Link         FormLink
	Messenger    Messenger
	Notifier     GroupNotifier
	Localizer    render.Localizer
	// CancelText is the message the confirm template's cancel action
	// sends back, matched later by the bot's cancel keyword.
	CancelText string
	Clock      func() time.Time
	NewID      func() (string, error)
}

// Intake coordinates the start of an order: it mints a correlation id,
// hands the customer a prefilled form link, and records the correlation
// only after the customer heard back.
type Intake struct {
	correlations CorrelationWriter
	link         FormLink
	messenger    Messenger
	notifier     GroupNotifier
	loc          render.Localizer
	cancelText   string
	clock        func() time.Time
	newID        func() (string, error)
	logf         func(format string, args ...any)
}

// NewIntake constructs an Intake coordinator.
func NewIntake(cfg IntakeConfig) (*Intake, error) {
	if cfg.Correlations == nil {
		return nil, fmt.Errorf("correlation writer is required")
	}
	if cfg.Messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = id.NewID
	}
	cancelText := strings.TrimSpace(cfg.CancelText)
	if cancelText == "" {
		cancelText = "no"
	}
	return &Intake{
		correlations: cfg.Correlations,
		link:         cfg.Link,
		messenger:    cfg.Messenger,
		notifier:     cfg.Notifier,
		loc:          cfg.Localizer,
		cancelText:   cancelText,
		clock:        cfg.Clock,
		newID:        cfg.NewID,
		logf:         log.Printf,
	}, nil
}

// StartOrder mints a correlation id, replies with the prefilled form link,
// and records the correlation. The reply goes out before anything is
// persisted: if the link cannot be built the customer is asked to retry
// and administrators are alerted, with no correlation left behind. A
// persist failure after a successful reply is logged only, because the
// durable log is a backstop and the fast layer may still hold the entry.
func (i *Intake) StartOrder(ctx context.Context, subjectID, replyToken string) error {
	if i == nil || i.messenger == nil {
		return fmt.Errorf("intake is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	replyToken = strings.TrimSpace(replyToken)
	if replyToken == "" {
		// Without a token the customer cannot be answered, so nothing is
		// minted either.
		i.logf("order intake for %s: no reply token, skipping", subjectID)
		return nil
	}

	correlationID, err := i.newID()
	if err != nil {
		i.replyRetry(ctx, replyToken)
		return fmt.Errorf("mint correlation id: %w", err)
	}

	link, err := i.link.Build(correlationID)
	if err != nil {
		i.logf("order intake for %s: %v", subjectID, err)
		i.alertAdmins(ctx, render.LinkFailureAlert(i.loc, correlationID))
		i.replyRetry(ctx, replyToken)
		return err
	}

	confirm := gateway.ConfirmLink(
		render.IntakeAltText(i.loc),
		render.IntakePrompt(i.loc),
		render.IntakeOpenFormLabel(i.loc),
		link,
		render.IntakeCancelLabel(i.loc),
		i.cancelText,
	)
	if err := i.messenger.Reply(ctx, replyToken, []gateway.Message{confirm}); err != nil {
		return fmt.Errorf("reply with form link: %w", err)
	}

	entry := CorrelationEntry{
		ID:        correlationID,
		SubjectID: subjectID,
		CreatedAt: i.clock().UTC(),
	}
	if err := i.correlations.Put(ctx, entry); err != nil {
		i.logf("order intake for %s: persist correlation %s: %v", subjectID, correlationID, err)
	}
	return nil
}

func (i *Intake) replyRetry(ctx context.Context, replyToken string) {
	err := i.messenger.Reply(ctx, replyToken, []gateway.Message{
		gateway.Text(render.IntakeRetry(i.loc)),
	})
	if err != nil {
		i.logf("order intake: retry reply failed: %v", err)
	}
}

func (i *Intake) alertAdmins(ctx context.Context, text string) {
	if i.notifier == nil {
		return
	}
	err := i.notifier.NotifyGroup(ctx, gateway.GroupAdministrators, []gateway.Message{
		gateway.Text(text),
	})
	if err != nil {
		i.logf("order intake: admin alert failed: %v", err)
	}
}
