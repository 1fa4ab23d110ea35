package launcher

import (
	"context"
	"fmt"
	"sync"

	sddbus "github.com/coreos/go-systemd/v22/dbus"
	"github.com/godbus/dbus/v5"
)

const documentationURL = "https://github.com/gurisko/jbsearch"

// SystemdScopes creates transient scopes through the user's systemd
// instance. The manager connection is opened on first use.
type SystemdScopes struct {
	mu   sync.Mutex
	conn *sddbus.Conn
}

// NewSystemdScopes creates a scope manager bound to the user manager.
func NewSystemdScopes() *SystemdScopes {
	return &SystemdScopes{}
}

func (s *SystemdScopes) connection(ctx context.Context) (*sddbus.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil && s.conn.Connected() {
		return s.conn, nil
	}
	conn, err := sddbus.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd user manager: %w", err)
	}
	s.conn = conn
	return conn, nil
}

// StartScope creates the scope unit holding pid and waits for the start job.
func (s *SystemdScopes) StartScope(ctx context.Context, name, description string, pid int) error {
	conn, err := s.connection(ctx)
	if err != nil {
		return err
	}

	props := []sddbus.Property{
		sddbus.PropPids(uint32(pid)),
		sddbus.PropDescription(description),
		{Name: "Documentation", Value: dbus.MakeVariant([]string{documentationURL})},
		{Name: "CollectMode", Value: dbus.MakeVariant("inactive-or-failed")},
	}

	done := make(chan string, 1)
	if _, err := conn.StartTransientUnitContext(ctx, name, "fail", props, done); err != nil {
		return fmt.Errorf("failed to start scope %s: %w", name, err)
	}

	select {
	case result := <-done:
		if result != "done" {
			return fmt.Errorf("scope %s start job finished with %q", name, result)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drops the manager connection.
func (s *SystemdScopes) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}
