package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/render"
)

func newTestIntake(t *testing.T, messenger *fakeMessenger, notifier *fakeNotifier, store CorrelationWriter, link FormLink) *Intake {
	t.Helper()
	intake, err := NewIntake(IntakeConfig{
		Correlations: store,
		Link:         link,
		Messenger:    messenger,
		Notifier:     notifier,
		Localizer:    render.NewLocalizer("en"),
		Clock:        fixedClock(time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC)),
		NewID:        sequentialIDs("corr-1", "corr-2"),
	})
	if err != nil {
		t.Fatalf("NewIntake: %v", err)
	}
	intake.logf = discardLogf
	return intake
}

func goodLink() FormLink {
	return FormLink{BaseURL: "https://forms.example.com/order", FieldKey: "entry.1234"}
}

func TestStartOrderRepliesThenPersists(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	fast := newFakeFast()
	durable := newFakeDurable()
	store := newTestStore(fast, durable)
	intake := newTestIntake(t, messenger, &fakeNotifier{}, store, goodLink())

	if err := intake.StartOrder(context.Background(), "user-1", "token-1"); err != nil {
		t.Fatalf("StartOrder: %v", err)
	}

	if len(messenger.replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(messenger.replies))
	}
	reply := messenger.replies[0]
	if reply.token != "token-1" {
		t.Errorf("reply token = %q, want token-1", reply.token)
	}
	if len(reply.messages) != 1 || reply.messages[0].Template == nil {
		t.Fatal("reply should carry a confirm template")
	}
	var linkURI string
	for _, action := range reply.messages[0].Template.Actions {
		if action.URI != "" {
			linkURI = action.URI
		}
	}
	if !strings.Contains(linkURI, "entry.1234=corr-1") {
		t.Errorf("link action uri = %q, want prefilled correlation id", linkURI)
	}

	entry, ok := durable.entries["corr-1"]
	if !ok {
		t.Fatal("durable log missing correlation")
	}
	if entry.SubjectID != "user-1" {
		t.Errorf("SubjectID = %q, want user-1", entry.SubjectID)
	}
}

func TestStartOrderWithoutReplyTokenSkips(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	durable := newFakeDurable()
	store := newTestStore(newFakeFast(), durable)
	intake := newTestIntake(t, messenger, &fakeNotifier{}, store, goodLink())

	if err := intake.StartOrder(context.Background(), "user-1", " "); err != nil {
		t.Fatalf("StartOrder: %v", err)
	}

	if len(messenger.replies) != 0 {
		t.Errorf("replies = %d, want 0", len(messenger.replies))
	}
	if len(durable.entries) != 0 {
		t.Error("no correlation should be minted without a reply token")
	}
}

func TestStartOrderLinkFailureAlertsAndPersistsNothing(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	notifier := &fakeNotifier{}
	fast := newFakeFast()
	durable := newFakeDurable()
	store := newTestStore(fast, durable)
	badLink := FormLink{BaseURL: "not a url", FieldKey: "entry.1234"}
	intake := newTestIntake(t, messenger, notifier, store, badLink)

	err := intake.StartOrder(context.Background(), "user-1", "token-1")

	var linkErr *LinkConstructionError
	if !errors.As(err, &linkErr) {
		t.Fatalf("err = %v, want LinkConstructionError", err)
	}
	if len(notifier.notified) != 1 {
		t.Fatalf("admin alerts = %d, want 1", len(notifier.notified))
	}
	if !strings.Contains(textOf(notifier.notified[0].messages), "corr-1") {
		t.Error("admin alert should carry the correlation id")
	}
	if len(messenger.replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(messenger.replies))
	}
	if len(durable.entries) != 0 || len(fast.entries) != 0 {
		t.Error("nothing should be persisted on link failure")
	}
}

func TestStartOrderReplyFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{replyErr: errors.New("transport down")}
	fast := newFakeFast()
	durable := newFakeDurable()
	store := newTestStore(fast, durable)
	intake := newTestIntake(t, messenger, &fakeNotifier{}, store, goodLink())

	if err := intake.StartOrder(context.Background(), "user-1", "token-1"); err == nil {
		t.Fatal("expected reply failure")
	}
	if len(durable.entries) != 0 {
		t.Error("nothing should be persisted when the reply fails")
	}
}

func TestStartOrderPersistFailureIsLoggedOnly(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	fast := newFakeFast()
	durable := newFakeDurable()
	durable.appendErr = errors.New("disk full")
	store := newTestStore(fast, durable)
	intake := newTestIntake(t, messenger, &fakeNotifier{}, store, goodLink())

	if err := intake.StartOrder(context.Background(), "user-1", "token-1"); err != nil {
		t.Fatalf("StartOrder: %v", err)
	}
	// The customer already has their link; the entry survives in the fast
	// layer for reconciliation.
	if fast.entries["corr-1"] != "user-1" {
		t.Error("fast layer missing entry")
	}
}

func TestStartOrderRequiresSubject(t *testing.T) {
	t.Parallel()

	intake := newTestIntake(t, &fakeMessenger{}, &fakeNotifier{}, newTestStore(newFakeFast(), newFakeDurable()), goodLink())

	if err := intake.StartOrder(context.Background(), " ", "token-1"); err == nil {
		t.Fatal("expected missing subject error")
	}
}
