// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between call sites and makes the
// durations discoverable.
package timeouts

import "time"

// Transport caps a single outbound messaging-transport attempt. Exceeding it
// is classified as a retryable transport failure, not a hang.
const Transport = 10 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// FastLayer caps a fast-layer cache round trip. The fast layer is a
// best-effort accelerator; a slow cache must not stall intake.
const FastLayer = 2 * time.Second
