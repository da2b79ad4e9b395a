package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/render"
)

// EventType classifies one inbound chat event.
type EventType string

const (
	// EventMessage is an inbound text message.
	EventMessage EventType = "message"
	// EventFollow fires when a subject adds the bot.
	EventFollow EventType = "follow"
)

// Event is one inbound chat event.
type Event struct {
	Type       EventType
	SubjectID  string
	ReplyToken string
	Text       string
}

// CustomerRegistrar persists customer registrations.
type CustomerRegistrar interface {
	RegisterCustomer(ctx context.Context, subjectID, displayName string, registeredAt time.Time) error
}

// Keywords configures bot command matching. Matching is exact after
// whitespace trimming.
type Keywords struct {
	// Order starts the order intake flow.
	Order string
	// Cancel acknowledges a cancelled intake. It must match the text the
	// intake confirm template's cancel action sends.
	Cancel string
	// Question replies with the contact-question answer.
	Question string
	// Admin enrolls the sender as an administrator. Left empty, admin
	// enrollment over chat is disabled.
	Admin string
}

// BotConfig wires a bot Handler.
type BotConfig struct {
	Intake    *Intake
	AdminFlow *AdminFlow
	Customers CustomerRegistrar
	Profiles  ProfileSource
	Messenger Messenger
	Localizer render.Localizer
	Keywords  Keywords
	Clock     func() time.Time
}

// Handler dispatches inbound chat events to the intake, admin, and
// registration flows.
type Handler struct {
	intake    *Intake
	adminFlow *AdminFlow
	customers CustomerRegistrar
	profiles  ProfileSource
	messenger Messenger
	loc       render.Localizer
	keywords  Keywords
	clock     func() time.Time
	logf      func(format string, args ...any)
}

// NewHandler constructs a bot event Handler.
func NewHandler(cfg BotConfig) (*Handler, error) {
	if cfg.Intake == nil {
		return nil, fmt.Errorf("intake is required")
	}
	if cfg.Messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if strings.TrimSpace(cfg.Keywords.Order) == "" {
		cfg.Keywords.Order = "order"
	}
	if strings.TrimSpace(cfg.Keywords.Cancel) == "" {
		cfg.Keywords.Cancel = "no"
	}
	if strings.TrimSpace(cfg.Keywords.Question) == "" {
		cfg.Keywords.Question = "question"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Handler{
		intake:    cfg.Intake,
		adminFlow: cfg.AdminFlow,
		customers: cfg.Customers,
		profiles:  cfg.Profiles,
		messenger: cfg.Messenger,
		loc:       cfg.Localizer,
		keywords:  cfg.Keywords,
		clock:     cfg.Clock,
		logf:      log.Printf,
	}, nil
}

// HandleEvent dispatches one inbound event. The admin keyword is checked
// before every other command so an administrator can always enroll, even
// when the keyword collides with another command.
func (h *Handler) HandleEvent(ctx context.Context, event Event) error {
	if h == nil || h.messenger == nil {
		return fmt.Errorf("bot handler is not configured")
	}

	switch event.Type {
	case EventFollow:
		return h.handleFollow(ctx, event)
	case EventMessage:
		return h.handleMessage(ctx, event)
	default:
		h.logf("bot: ignoring event type %q", event.Type)
		return nil
	}
}

func (h *Handler) handleMessage(ctx context.Context, event Event) error {
	text := strings.TrimSpace(event.Text)

	admin := strings.TrimSpace(h.keywords.Admin)
	if admin != "" && text == admin {
		if h.adminFlow == nil {
			h.logf("bot: admin keyword received but admin flow is disabled")
			return nil
		}
		return h.adminFlow.Register(ctx, event.SubjectID, event.ReplyToken)
	}

	switch text {
	case strings.TrimSpace(h.keywords.Order):
		return h.intake.StartOrder(ctx, event.SubjectID, event.ReplyToken)
	case strings.TrimSpace(h.keywords.Cancel):
		return h.messenger.Reply(ctx, event.ReplyToken, []gateway.Message{
			gateway.Text(render.Cancelled(h.loc)),
		})
	case strings.TrimSpace(h.keywords.Question):
		return h.messenger.Reply(ctx, event.ReplyToken, []gateway.Message{
			gateway.Text(render.QuestionAck(h.loc)),
		})
	default:
		// Free-form text stays unanswered so staff can converse in the
		// chat without the bot talking over them.
		return nil
	}
}

// handleFollow welcomes a new follower and records them as a customer.
// Registration failures are logged so the welcome still goes out.
func (h *Handler) handleFollow(ctx context.Context, event Event) error {
	subjectID := strings.TrimSpace(event.SubjectID)
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}

	var displayName string
	if h.profiles != nil {
		name, err := h.profiles.Profile(ctx, subjectID)
		if err != nil {
			h.logf("follow from %s: profile lookup failed: %v", subjectID, err)
		} else {
			displayName = name
		}
	}

	if h.customers != nil {
		if err := h.customers.RegisterCustomer(ctx, subjectID, displayName, h.clock().UTC()); err != nil {
			h.logf("follow from %s: customer registration failed: %v", subjectID, err)
		}
	}

	return h.messenger.Reply(ctx, event.ReplyToken, []gateway.Message{
		gateway.Text(render.Welcome(h.loc, displayName)),
	})
}
