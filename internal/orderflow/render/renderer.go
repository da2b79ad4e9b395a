// Package render composes localized user-facing copy for order intake,
// confirmations, and administrator alerts.
package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// NewLocalizer returns a message printer for the given BCP 47 tag,
// defaulting to English when the tag is empty or unparsable.
func NewLocalizer(tag string) Localizer {
	lang := language.English
	if trimmed := strings.TrimSpace(tag); trimmed != "" {
		if parsed, err := language.Parse(trimmed); err == nil {
			lang = parsed
		}
	}
	return message.NewPrinter(lang)
}

// Item is one ordered line item.
type Item struct {
	Name     string
	Quantity string
}

// Order is the reconciled order content used to compose summaries.
type Order struct {
	ID           string
	ShopName     string
	DeliveryDate string
	Comment      string
	Items        []Item
}

// Summary returns the order content as display lines. Items with an empty
// or zero quantity are omitted.
func Summary(loc Localizer, order Order) string {
	var lines []string
	lines = append(lines, localize(loc, "order.summary.title", order.ID))
	if shop := strings.TrimSpace(order.ShopName); shop != "" {
		lines = append(lines, localize(loc, "order.summary.shop", shop))
	}
	if date := strings.TrimSpace(order.DeliveryDate); date != "" {
		lines = append(lines, localize(loc, "order.summary.delivery_date", date))
	}
	for _, item := range order.Items {
		name := strings.TrimSpace(item.Name)
		quantity := strings.TrimSpace(item.Quantity)
		if name == "" || quantity == "" || quantity == "0" {
			continue
		}
		lines = append(lines, localize(loc, "order.summary.item", name, quantity))
	}
	if comment := strings.TrimSpace(order.Comment); comment != "" {
		lines = append(lines, localize(loc, "order.summary.comment", comment))
	}
	return strings.Join(lines, "\n")
}

// UserConfirmation returns the message pushed to a customer after their
// submission is reconciled.
func UserConfirmation(loc Localizer, order Order) string {
	return localize(loc, "order.confirmation.header") + "\n\n" + Summary(loc, order)
}

// AdminAlert returns the message dispatched to administrators for a
// reconciled order.
func AdminAlert(loc Localizer, order Order) string {
	return localize(loc, "order.alert.header") + "\n\n" + Summary(loc, order)
}

// IntakePrompt returns the confirm-template prompt shown with the
// prefilled form link.
func IntakePrompt(loc Localizer) string {
	return localize(loc, "order.intake.prompt")
}

// IntakeAltText returns the fallback text for clients that cannot show
// the confirm template.
func IntakeAltText(loc Localizer) string {
	return localize(loc, "order.intake.alt_text")
}

// IntakeOpenFormLabel returns the confirm-template link action label.
func IntakeOpenFormLabel(loc Localizer) string {
	return localize(loc, "order.intake.open_form")
}

// IntakeCancelLabel returns the confirm-template cancel action label.
func IntakeCancelLabel(loc Localizer) string {
	return localize(loc, "order.intake.cancel")
}

// IntakeRetry returns the reply sent when the form link cannot be built.
func IntakeRetry(loc Localizer) string {
	return localize(loc, "order.intake.retry")
}

// LinkFailureAlert returns the administrator alert sent when the form link
// cannot be built for a minted correlation id.
func LinkFailureAlert(loc Localizer, correlationID string) string {
	return localize(loc, "order.intake.link_failure", correlationID)
}

// ReconcileMissAlert returns the administrator alert sent when a submission
// references an unknown correlation id.
func ReconcileMissAlert(loc Localizer, correlationID string) string {
	return localize(loc, "order.reconcile.miss", correlationID)
}

// Cancelled returns the reply for a cancelled intake.
func Cancelled(loc Localizer) string {
	return localize(loc, "reply.cancelled")
}

// QuestionAck returns the reply for a free-form question.
func QuestionAck(loc Localizer) string {
	return localize(loc, "reply.question")
}

// Welcome returns the reply for a new follower.
func Welcome(loc Localizer, displayName string) string {
	return localize(loc, "reply.welcome", strings.TrimSpace(displayName))
}

// AdminRegistered returns the reply confirming administrator registration.
func AdminRegistered(loc Localizer) string {
	return localize(loc, "reply.admin_registered")
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}
