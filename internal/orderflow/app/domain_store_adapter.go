package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/domain"
	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/storage"
)

// correlationCache is the fast-layer contract shared by the Redis and
// in-process implementations.
type correlationCache interface {
	Put(ctx context.Context, id, subjectID string) error
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

type fastLayerAdapter struct {
	cache correlationCache
}

func (a *fastLayerAdapter) Put(ctx context.Context, id, subjectID string) error {
	if a == nil || a.cache == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.cache.Put(ctx, id, subjectID))
}

func (a *fastLayerAdapter) Get(ctx context.Context, id string) (string, error) {
	if a == nil || a.cache == nil {
		return "", domain.ErrStoreNotConfigured
	}
	subjectID, err := a.cache.Get(ctx, id)
	if err != nil {
		return "", mapStorageError(err)
	}
	return subjectID, nil
}

func (a *fastLayerAdapter) Delete(ctx context.Context, id string) error {
	if a == nil || a.cache == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.cache.Delete(ctx, id))
}

type domainStoreAdapter struct {
	store storage.Store
}

func newDomainStoreAdapter(store storage.Store) *domainStoreAdapter {
	return &domainStoreAdapter{store: store}
}

func (a *domainStoreAdapter) Append(ctx context.Context, entry domain.CorrelationEntry) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.AppendCorrelation(ctx, storage.CorrelationRecord{
		ID:        entry.ID,
		SubjectID: entry.SubjectID,
		CreatedAt: entry.CreatedAt,
	}))
}

func (a *domainStoreAdapter) Find(ctx context.Context, id string) (domain.CorrelationEntry, error) {
	if a == nil || a.store == nil {
		return domain.CorrelationEntry{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.FindCorrelation(ctx, id)
	if err != nil {
		return domain.CorrelationEntry{}, mapStorageError(err)
	}
	return domain.CorrelationEntry{
		ID:        record.ID,
		SubjectID: record.SubjectID,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (a *domainStoreAdapter) Delete(ctx context.Context, id string) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.DeleteCorrelation(ctx, id))
}

func (a *domainStoreAdapter) RegisterAdmin(ctx context.Context, subjectID, displayName string, registeredAt time.Time) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.UpsertAdmin(ctx, storage.AdminRecord{
		SubjectID:    subjectID,
		DisplayName:  displayName,
		RegisteredAt: registeredAt,
	}))
}

func (a *domainStoreAdapter) RegisterCustomer(ctx context.Context, subjectID, displayName string, registeredAt time.Time) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.UpsertCustomer(ctx, storage.CustomerRecord{
		SubjectID:    subjectID,
		DisplayName:  displayName,
		RegisteredAt: registeredAt,
	}))
}

func (a *domainStoreAdapter) AppendOrder(ctx context.Context, order domain.Order) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	return mapStorageError(a.store.AppendOrder(ctx, storage.OrderRecord{
		ID:            order.ID,
		CorrelationID: order.CorrelationID,
		SubjectID:     order.SubjectID,
		ShopName:      order.ShopName,
		DeliveryDate:  order.DeliveryDate,
		Comment:       order.Comment,
		ItemsJSON:     domain.ItemsJSON(order.Items),
		AcceptedAt:    order.AcceptedAt,
	}))
}

// directoryAdapter resolves recipient groups against the admin registry.
type directoryAdapter struct {
	store storage.AdminStore
}

func (a *directoryAdapter) SubjectIDs(ctx context.Context, group string) ([]string, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	if group != gateway.GroupAdministrators {
		return nil, fmt.Errorf("unknown recipient group %q", group)
	}
	return a.store.ListAdminSubjectIDs(ctx)
}

func mapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

var (
	_ domain.FastLayer         = (*fastLayerAdapter)(nil)
	_ domain.DurableLog        = (*domainStoreAdapter)(nil)
	_ domain.AdminRegistrar    = (*domainStoreAdapter)(nil)
	_ domain.CustomerRegistrar = (*domainStoreAdapter)(nil)
	_ domain.OrderLog          = (*domainStoreAdapter)(nil)
)
