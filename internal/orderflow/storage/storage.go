// Package storage defines persistence records and interfaces for the
// order correlation and dispatch engine.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a requested write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// CorrelationRecord stores one minted correlation entry in the durable log.
type CorrelationRecord struct {
	ID        string
	SubjectID string
	CreatedAt time.Time
}

// AdminRecord stores one registered administrator.
type AdminRecord struct {
	SubjectID    string
	DisplayName  string
	RegisteredAt time.Time
}

// OrderRecord stores one reconciled order transcription.
type OrderRecord struct {
	ID            string
	CorrelationID string
	SubjectID     string
	ShopName      string
	DeliveryDate  string
	Comment       string
	ItemsJSON     string
	AcceptedAt    time.Time
}

// CustomerRecord stores one registered customer.
type CustomerRecord struct {
	SubjectID    string
	DisplayName  string
	RegisteredAt time.Time
}

// CorrelationLog is the durable append-only side of the correlation store.
type CorrelationLog interface {
	AppendCorrelation(ctx context.Context, record CorrelationRecord) error
	FindCorrelation(ctx context.Context, id string) (CorrelationRecord, error)
	DeleteCorrelation(ctx context.Context, id string) error
}

// AdminStore persists administrator registrations.
type AdminStore interface {
	UpsertAdmin(ctx context.Context, record AdminRecord) error
	ListAdminSubjectIDs(ctx context.Context) ([]string, error)
}

// OrderStore persists reconciled orders.
type OrderStore interface {
	AppendOrder(ctx context.Context, record OrderRecord) error
}

// CustomerStore persists customer registrations.
type CustomerStore interface {
	UpsertCustomer(ctx context.Context, record CustomerRecord) error
}

// Store combines all durable persistence concerns.
type Store interface {
	CorrelationLog
	AdminStore
	OrderStore
	CustomerStore
	Close() error
}
