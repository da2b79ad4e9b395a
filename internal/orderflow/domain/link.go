package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// LinkConstructionError indicates a prefilled hand-off URL could not be
// built or failed its round-trip validation.
type LinkConstructionError struct {
	CorrelationID string
	Reason        string
}

func (e *LinkConstructionError) Error() string {
	return fmt.Sprintf("build form link for %s: %s", e.CorrelationID, e.Reason)
}

// FormLink builds prefilled hand-off URLs carrying one correlation id.
type FormLink struct {
	// BaseURL is the absolute form URL, which may already carry query
	// parameters of its own.
	BaseURL string
	// FieldKey is the query parameter that carries the correlation id.
	FieldKey string
}

// Build returns the hand-off URL with the correlation id filled in. The
// result is re-parsed and checked before use: the id parameter must occur
// exactly once and round-trip to the exact id value, so a malformed base
// URL can never hand a customer a silently broken or ambiguous link.
func (l FormLink) Build(correlationID string) (string, error) {
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return "", &LinkConstructionError{Reason: "correlation id is required"}
	}
	fieldKey := strings.TrimSpace(l.FieldKey)
	if fieldKey == "" {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: "field key is required"}
	}

	base, err := url.Parse(strings.TrimSpace(l.BaseURL))
	if err != nil {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: fmt.Sprintf("parse base url: %v", err)}
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: fmt.Sprintf("unsupported scheme %q", base.Scheme)}
	}
	if base.Host == "" {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: "base url has no host"}
	}

	query := base.Query()
	query.Set(fieldKey, correlationID)
	base.RawQuery = query.Encode()
	built := base.String()

	parsed, err := url.Parse(built)
	if err != nil {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: fmt.Sprintf("reparse built url: %v", err)}
	}
	values := parsed.Query()[fieldKey]
	if len(values) != 1 {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: fmt.Sprintf("field %q occurs %d times, want 1", fieldKey, len(values))}
	}
	if values[0] != correlationID {
		return "", &LinkConstructionError{CorrelationID: correlationID, Reason: fmt.Sprintf("field %q round-tripped to %q", fieldKey, values[0])}
	}
	return built, nil
}
