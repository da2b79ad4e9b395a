package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/render"
	"github.com/louisbranch/orderlink/internal/platform/id"
)

// ErrCorrelationFieldMissing indicates a submission carries no answer for
// the correlation id field.
var ErrCorrelationFieldMissing = errors.New("submission has no correlation id answer")

// ReconciliationMissError indicates a submission referenced a correlation
// id with no matching intake.
type ReconciliationMissError struct {
	CorrelationID string
}

func (e *ReconciliationMissError) Error() string {
	return fmt.Sprintf("no pending order for correlation %s", e.CorrelationID)
}

// Answer is one submitted form field.
type Answer struct {
	Title string
	Value string
}

// Submission is one completed form hand-off. Answers are matched by field
// title, never by position, so reordering form fields cannot corrupt the
// transcription.
type Submission struct {
	Answers []Answer
}

// Order is one reconciled order transcription.
type Order struct {
	ID            string
	CorrelationID string
	SubjectID     string
	ShopName      string
	DeliveryDate  string
	Comment       string
	Items         []render.Item
	AcceptedAt    time.Time
}

// CorrelationConsumer hands out correlation entries exactly once.
type CorrelationConsumer interface {
	Consume(ctx context.Context, id string) (CorrelationEntry, error)
}

// OrderLog persists reconciled orders.
type OrderLog interface {
	AppendOrder(ctx context.Context, order Order) error
}

// FieldTitles names the reserved form fields. Any answer whose title is
// not reserved is treated as an ordered item, with the title as the item
// name and the value as its quantity.
type FieldTitles struct {
	CorrelationID string
	ShopName      string
	DeliveryDate  string
	Comment       string
}

// ReconcilerConfig wires a Reconciler.
type ReconcilerConfig struct {
	Correlations CorrelationConsumer
	Orders       OrderLog
	Messenger    Messenger
	Notifier     GroupNotifier
	Localizer    render.Localizer
	Titles       FieldTitles
	// AlertOnMiss controls whether administrators are notified when a
	// submission references an unknown correlation id.
	AlertOnMiss bool
	Clock       func() time.Time
	NewID       func() (string, error)
}

// Reconciler matches form submissions back to their originating intake and
// dispatches the resulting order to the customer and administrators.
type Reconciler struct {
	correlations CorrelationConsumer
	orders       OrderLog
	messenger    Messenger
	notifier     GroupNotifier
	loc          render.Localizer
	titles       FieldTitles
	alertOnMiss  bool
	clock        func() time.Time
	newID        func() (string, error)
	logf         func(format string, args ...any)
}

// NewReconciler constructs a Reconciler.
func NewReconciler(cfg ReconcilerConfig) (*Reconciler, error) {
	if cfg.Correlations == nil {
		return nil, fmt.Errorf("correlation consumer is required")
	}
	if strings.TrimSpace(cfg.Titles.CorrelationID) == "" {
		return nil, fmt.Errorf("correlation id field title is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = id.NewID
	}
	return &Reconciler{
		correlations: cfg.Correlations,
		orders:       cfg.Orders,
		messenger:    cfg.Messenger,
		notifier:     cfg.Notifier,
		loc:          cfg.Localizer,
		titles:       cfg.Titles,
		alertOnMiss:  cfg.AlertOnMiss,
		clock:        cfg.Clock,
		newID:        cfg.NewID,
		logf:         log.Printf,
	}, nil
}

// Process reconciles one submission. The correlation entry is consumed
// exactly once; the customer confirmation and the administrator alert are
// then dispatched independently, so a failure on one channel never
// suppresses the other. Dispatch failures are logged, not returned.
func (r *Reconciler) Process(ctx context.Context, submission Submission) error {
	if r == nil || r.correlations == nil {
		return fmt.Errorf("reconciler is not configured")
	}

	correlationID := r.answerFor(submission, r.titles.CorrelationID)
	if correlationID == "" {
		return ErrCorrelationFieldMissing
	}

	entry, err := r.correlations.Consume(ctx, correlationID)
	if errors.Is(err, ErrNotFound) {
		r.logf("reconcile %s: no pending order (expired, already consumed, or malformed)", correlationID)
		if r.alertOnMiss {
			r.alertAdmins(ctx, render.ReconcileMissAlert(r.loc, correlationID))
		}
		return &ReconciliationMissError{CorrelationID: correlationID}
	}
	if err != nil {
		return fmt.Errorf("consume correlation %s: %w", correlationID, err)
	}

	order := r.transcribe(submission, entry)
	if r.orders != nil {
		if err := r.orders.AppendOrder(ctx, order); err != nil {
			r.logf("reconcile %s: persist order: %v", correlationID, err)
		}
	}

	summary := render.Order{
		ID:           correlationID,
		ShopName:     order.ShopName,
		DeliveryDate: order.DeliveryDate,
		Comment:      order.Comment,
		Items:        order.Items,
	}
	if r.messenger != nil {
		confirmation := gateway.Text(render.UserConfirmation(r.loc, summary))
		if err := r.messenger.Push(ctx, entry.SubjectID, []gateway.Message{confirmation}); err != nil {
			r.logf("reconcile %s: customer confirmation failed: %v", correlationID, err)
		}
	}
	r.alertAdmins(ctx, render.AdminAlert(r.loc, summary))
	return nil
}

// transcribe converts a submission's answers into an order record.
func (r *Reconciler) transcribe(submission Submission, entry CorrelationEntry) Order {
	order := Order{
		CorrelationID: entry.ID,
		SubjectID:     entry.SubjectID,
		ShopName:      r.answerFor(submission, r.titles.ShopName),
		DeliveryDate:  r.answerFor(submission, r.titles.DeliveryDate),
		Comment:       r.answerFor(submission, r.titles.Comment),
		AcceptedAt:    r.clock().UTC(),
	}

	orderID, err := r.newID()
	if err != nil {
		r.logf("reconcile %s: mint order id: %v", entry.ID, err)
		orderID = entry.ID
	}
	order.ID = orderID

	reserved := map[string]bool{}
	for _, title := range []string{r.titles.CorrelationID, r.titles.ShopName, r.titles.DeliveryDate, r.titles.Comment} {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			reserved[trimmed] = true
		}
	}
	for _, answer := range submission.Answers {
		title := strings.TrimSpace(answer.Title)
		if title == "" || reserved[title] {
			continue
		}
		order.Items = append(order.Items, render.Item{
			Name:     title,
			Quantity: strings.TrimSpace(answer.Value),
		})
	}
	return order
}

// answerFor returns the trimmed value of the first answer matching title.
func (r *Reconciler) answerFor(submission Submission, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	for _, answer := range submission.Answers {
		if strings.TrimSpace(answer.Title) == title {
			return strings.TrimSpace(answer.Value)
		}
	}
	return ""
}

func (r *Reconciler) alertAdmins(ctx context.Context, text string) {
	if r.notifier == nil {
		return
	}
	err := r.notifier.NotifyGroup(ctx, gateway.GroupAdministrators, []gateway.Message{
		gateway.Text(text),
	})
	if err != nil {
		r.logf("reconcile: admin alert failed: %v", err)
	}
}

// ItemsJSON encodes an order's items for durable storage.
func ItemsJSON(items []render.Item) string {
	type item struct {
		Name     string `json:"name"`
		Quantity string `json:"quantity"`
	}
	encoded := make([]item, 0, len(items))
	for _, it := range items {
		encoded = append(encoded, item{Name: it.Name, Quantity: it.Quantity})
	}
	raw, err := json.Marshal(encoded)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
