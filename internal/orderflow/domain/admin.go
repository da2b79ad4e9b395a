package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/orderlink/internal/orderflow/gateway"
	"github.com/louisbranch/orderlink/internal/orderflow/render"
)

// AdminRegistrar persists administrator registrations.
type AdminRegistrar interface {
	RegisterAdmin(ctx context.Context, subjectID, displayName string, registeredAt time.Time) error
}

// AdminFlow registers the sender of the admin keyword as an administrator.
type AdminFlow struct {
	registrar AdminRegistrar
	profiles  ProfileSource
	messenger Messenger
	loc       render.Localizer
	clock     func() time.Time
	logf      func(format string, args ...any)
}

// NewAdminFlow constructs an AdminFlow.
func NewAdminFlow(registrar AdminRegistrar, profiles ProfileSource, messenger Messenger, loc render.Localizer, clock func() time.Time) (*AdminFlow, error) {
	if registrar == nil {
		return nil, fmt.Errorf("admin registrar is required")
	}
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &AdminFlow{
		registrar: registrar,
		profiles:  profiles,
		messenger: messenger,
		loc:       loc,
		clock:     clock,
		logf:      log.Printf,
	}, nil
}

// Register enrolls the sender as an administrator and confirms by reply.
// Registration is idempotent: repeating the keyword refreshes the record.
// A profile lookup failure degrades to an empty display name rather than
// blocking enrollment.
func (f *AdminFlow) Register(ctx context.Context, subjectID, replyToken string) error {
	if f == nil || f.registrar == nil {
		return fmt.Errorf("admin flow is not configured")
	}
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}

	var displayName string
	if f.profiles != nil {
		name, err := f.profiles.Profile(ctx, subjectID)
		if err != nil {
			f.logf("admin registration for %s: profile lookup failed: %v", subjectID, err)
		} else {
			displayName = name
		}
	}

	if err := f.registrar.RegisterAdmin(ctx, subjectID, displayName, f.clock().UTC()); err != nil {
		return fmt.Errorf("register admin %s: %w", subjectID, err)
	}

	err := f.messenger.Reply(ctx, replyToken, []gateway.Message{
		gateway.Text(render.AdminRegistered(f.loc)),
	})
	if err != nil {
		f.logf("admin registration for %s: confirmation reply failed: %v", subjectID, err)
	}
	return nil
}
