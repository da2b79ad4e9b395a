package gateway

import "fmt"

// StatusError reports a non-success transport response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transport returned status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the status indicates a transient condition
// worth retrying: rate limiting or a server-side failure. Anything else in
// the 4xx range is terminal; retrying a malformed or unauthorized request
// wastes the attempt budget without any chance of success.
func (e *StatusError) Retryable() bool {
	return e.Status == 429 || e.Status >= 500
}

// InvalidReplyTokenError reports a reply rejected because its single-use
// token is missing, already used, or expired. It is never retried.
type InvalidReplyTokenError struct {
	Status int
	Body   string
}

func (e *InvalidReplyTokenError) Error() string {
	return fmt.Sprintf("reply token rejected with status %d: %s", e.Status, e.Body)
}

// DeliveryExhaustedError reports that every retry attempt failed with a
// transient error. It carries the final attempt's status and body.
type DeliveryExhaustedError struct {
	Attempts int
	Status   int
	Body     string
	Err      error
}

func (e *DeliveryExhaustedError) Error() string {
	return fmt.Sprintf("delivery exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DeliveryExhaustedError) Unwrap() error {
	return e.Err
}
