package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
)

type fakeFast struct {
	mu      sync.Mutex
	entries map[string]string
	putErr  error
	getErr  error
	delErr  error
}

func newFakeFast() *fakeFast {
	return &fakeFast{entries: map[string]string{}}
}

func (f *fakeFast) Put(_ context.Context, id, subjectID string) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[id] = subjectID
	return nil
}

func (f *fakeFast) Get(_ context.Context, id string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	subjectID, ok := f.entries[id]
	if !ok {
		return "", ErrNotFound
	}
	return subjectID, nil
}

func (f *fakeFast) Delete(_ context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

type fakeDurable struct {
	mu        sync.Mutex
	entries   map[string]CorrelationEntry
	appendErr error
	findErr   error
	delErr    error
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{entries: map[string]CorrelationEntry{}}
}

func (f *fakeDurable) Append(_ context.Context, entry CorrelationEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeDurable) Find(_ context.Context, id string) (CorrelationEntry, error) {
	if f.findErr != nil {
		return CorrelationEntry{}, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return CorrelationEntry{}, ErrNotFound
	}
	return entry, nil
}

func (f *fakeDurable) Delete(_ context.Context, id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

type sentReply struct {
	token    string
	messages []gateway.Message
}

type sentPush struct {
	subjectID string
	messages  []gateway.Message
}

type fakeMessenger struct {
	mu       sync.Mutex
	replies  []sentReply
	pushes   []sentPush
	replyErr error
	pushErr  error
}

func (m *fakeMessenger) Reply(_ context.Context, token string, messages []gateway.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, sentReply{token: token, messages: messages})
	return m.replyErr
}

func (m *fakeMessenger) Push(_ context.Context, subjectID string, messages []gateway.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushes = append(m.pushes, sentPush{subjectID: subjectID, messages: messages})
	return m.pushErr
}

type sentGroup struct {
	group    string
	messages []gateway.Message
}

type fakeNotifier struct {
	mu        sync.Mutex
	notified  []sentGroup
	notifyErr error
}

func (n *fakeNotifier) NotifyGroup(_ context.Context, group string, messages []gateway.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, sentGroup{group: group, messages: messages})
	return n.notifyErr
}

type fakeProfiles struct {
	names map[string]string
	err   error
}

func (p *fakeProfiles) Profile(_ context.Context, subjectID string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.names[subjectID], nil
}

type registeredAdmin struct {
	subjectID    string
	displayName  string
	registeredAt time.Time
}

type fakeAdminRegistrar struct {
	registered []registeredAdmin
	err        error
}

func (r *fakeAdminRegistrar) RegisterAdmin(_ context.Context, subjectID, displayName string, registeredAt time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.registered = append(r.registered, registeredAdmin{
		subjectID:    subjectID,
		displayName:  displayName,
		registeredAt: registeredAt,
	})
	return nil
}

type fakeCustomerRegistrar struct {
	registered []registeredAdmin
	err        error
}

func (r *fakeCustomerRegistrar) RegisterCustomer(_ context.Context, subjectID, displayName string, registeredAt time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.registered = append(r.registered, registeredAdmin{
		subjectID:    subjectID,
		displayName:  displayName,
		registeredAt: registeredAt,
	})
	return nil
}

type fakeOrderLog struct {
	orders []Order
	err    error
}

func (l *fakeOrderLog) AppendOrder(_ context.Context, order Order) error {
	if l.err != nil {
		return l.err
	}
	l.orders = append(l.orders, order)
	return nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func sequentialIDs(ids ...string) func() (string, error) {
	index := 0
	return func() (string, error) {
		if index >= len(ids) {
			return "", fmt.Errorf("id sequence exhausted")
		}
		id := ids[index]
		index++
		return id, nil
	}
}

func discardLogf(string, ...any) {}

func textOf(messages []gateway.Message) string {
	if len(messages) == 0 {
		return ""
	}
	if messages[0].Template != nil {
		return messages[0].Template.Text
	}
	return messages[0].Text
}
