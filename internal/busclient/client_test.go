package busclient

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestWrapErr(t *testing.T) {
	c := &Client{busName: "io.example.Test"}

	assert.NoError(t, c.wrapErr(nil))

	err := c.wrapErr(dbus.Error{Name: errServiceUnknown, Body: []any{"no such name"}})
	assert.True(t, IsNotRunning(err))
	assert.Contains(t, err.Error(), "io.example.Test")

	err = c.wrapErr(dbus.Error{Name: errNameHasNoOwner})
	assert.True(t, IsNotRunning(err))

	other := errors.New("timeout")
	assert.Same(t, other, c.wrapErr(other))
	assert.False(t, IsNotRunning(c.wrapErr(dbus.Error{Name: "org.freedesktop.DBus.Error.Failed"})))
}
