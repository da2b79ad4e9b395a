package gateway

import "strings"

// Message is one outbound messaging-transport payload item.
type Message struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	AltText  string    `json:"altText,omitempty"`
	Template *Template `json:"template,omitempty"`
}

// Template is a structured prompt rendered by the chat client.
type Template struct {
	Type    string   `json:"type"`
	Text    string   `json:"text"`
	Actions []Action `json:"actions"`
}

// Action is one tappable choice inside a template message.
type Action struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Text builds a plain text message.
func Text(text string) Message {
	return Message{Type: "text", Text: text}
}

// ConfirmLink builds a confirm template offering one link action and one
// cancel action that echoes cancelText back as a chat message.
func ConfirmLink(altText, prompt, linkLabel, link, cancelLabel, cancelText string) Message {
	return Message{
		Type:    "template",
		AltText: altText,
		Template: &Template{
			Type: "confirm",
			Text: prompt,
			Actions: []Action{
				{Type: "uri", Label: linkLabel, URI: link},
				{Type: "message", Label: cancelLabel, Text: cancelText},
			},
		},
	}
}

// Normalize coerces every message into a minimal valid transport shape.
// Untyped payloads are wrapped as plain text so a partially-built message
// from an upstream composition failure cannot reach the transport as-is.
func Normalize(messages []Message) []Message {
	normalized := make([]Message, 0, len(messages))
	for _, message := range messages {
		if strings.TrimSpace(message.Type) == "" {
			message = Text(message.Text)
		}
		if message.Type == "text" {
			message.Template = nil
		}
		normalized = append(normalized, message)
	}
	return normalized
}
