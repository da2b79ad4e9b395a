// Package id generates compact, URL-safe random identifiers.
//
// Identifiers carry UUIDv4-equivalent entropy but are encoded as 26
// lowercase base32 characters so they survive being embedded in URLs,
// form fields, and log lines without escaping.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a new 26-character lowercase base32 identifier.
func NewID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	// Stamp UUIDv4 version and variant bits so the decoded form is a
	// valid UUID when interop requires one.
	raw[6] = (raw[6] & 0x0F) | 0x40
	raw[8] = (raw[8] & 0x3F) | 0x80
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}
