// Package busclient talks to a running jbsearch service over the session bus.
package busclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	catalogIface = "io.github.gurisko.jbsearch.Catalog"

	errServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	errNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
)

// ErrNotRunning means no process owns the service's bus name
var ErrNotRunning = errors.New("jbsearch service is not running")

type Client struct {
	conn    *dbus.Conn
	obj     dbus.BusObject
	busName string
}

// New connects to the session bus. The service itself is only contacted on
// the first call.
func New(busName string, path dbus.ObjectPath) (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{conn: conn, obj: conn.Object(busName, path), busName: busName}, nil
}

// Refresh asks the service to rebuild its catalog and waits until it has.
func (c *Client) Refresh(ctx context.Context) error {
	call := c.obj.CallWithContext(ctx, catalogIface+".Refresh", 0)
	return c.wrapErr(call.Err)
}

// Stats returns the number of projects per product in the current catalog.
func (c *Client) Stats(ctx context.Context) (map[string]uint32, error) {
	var out map[string]uint32
	if err := c.obj.CallWithContext(ctx, catalogIface+".Stats", 0).Store(&out); err != nil {
		return nil, c.wrapErr(err)
	}
	return out, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// IsNotRunning reports whether err came from a missing service.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// Friendly hint when the service isn't running.
func (c *Client) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if name := errorName(err); name == errServiceUnknown || name == errNameHasNoOwner {
		return fmt.Errorf("%w: nothing owns %s; try `systemctl --user start jbsearch` or `jbsearch serve` (%w)", ErrNotRunning, c.busName, err)
	}
	return err
}

func errorName(err error) string {
	var byValue dbus.Error
	if errors.As(err, &byValue) {
		return byValue.Name
	}
	var byPointer *dbus.Error
	if errors.As(err, &byPointer) {
		return byPointer.Name
	}
	return ""
}
