package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "order.intake.prompt", "Tap the link below to fill in your order. Your order number is already filled in.")
	message.SetString(lang, "order.intake.alt_text", "Order form link")
	message.SetString(lang, "order.intake.open_form", "Open form")
	message.SetString(lang, "order.intake.cancel", "Cancel")
	message.SetString(lang, "order.intake.retry", "We could not prepare your order form. Please try again shortly.")
	message.SetString(lang, "order.intake.link_failure", "Order form link could not be built for order %s. The customer was asked to retry.")

	message.SetString(lang, "order.summary.title", "Order %s")
	message.SetString(lang, "order.summary.shop", "Pickup shop: %s")
	message.SetString(lang, "order.summary.delivery_date", "Delivery date: %s")
	message.SetString(lang, "order.summary.item", "%s x %s")
	message.SetString(lang, "order.summary.comment", "Note: %s")

	message.SetString(lang, "order.confirmation.header", "Thank you, your order has been received.")
	message.SetString(lang, "order.alert.header", "New order received.")
	message.SetString(lang, "order.reconcile.miss", "A submission arrived for order %s but no matching request was found.")

	message.SetString(lang, "reply.cancelled", "No problem, your request has been cancelled.")
	message.SetString(lang, "reply.question", "Thanks for reaching out. A member of our staff will reply to you here.")
	message.SetString(lang, "reply.welcome", "Thanks for adding us, %s! Send \"order\" whenever you want to place an order.")
	message.SetString(lang, "reply.admin_registered", "You are now registered as an administrator.")
}
