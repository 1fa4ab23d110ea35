//go:build unix

package daemon

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/logging"
)

const (
	logControlPath  dbus.ObjectPath = "/org/freedesktop/LogControl1"
	logControlIface                 = "org.freedesktop.LogControl1"
	syslogID                        = "jbsearch"
)

// logControlProps maps org.freedesktop.LogControl1 properties onto the
// logger. Writes that the logger rejects fail with InvalidArgs.
func logControlProps(log *logging.Logger) prop.Map {
	return prop.Map{
		logControlIface: {
			"LogLevel": {
				Value:    log.SyslogLevel(),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					level, ok := c.Value.(string)
					if !ok {
						return prop.ErrInvalidArg
					}
					if err := log.SetSyslogLevel(level); err != nil {
						return dbus.MakeFailedError(err)
					}
					log.Info("log level changed", zap.String("level", level))
					return nil
				},
			},
			"LogTarget": {
				Value:    log.Target(),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: func(c *prop.Change) *dbus.Error {
					target, ok := c.Value.(string)
					if !ok {
						return prop.ErrInvalidArg
					}
					if err := log.SetTarget(target); err != nil {
						return dbus.MakeFailedError(err)
					}
					return nil
				},
			},
			"SyslogIdentifier": {
				Value:    syslogID,
				Writable: false,
				Emit:     prop.EmitConst,
			},
		},
	}
}

func exportLogControl(conn *dbus.Conn, log *logging.Logger) error {
	props, err := prop.Export(conn, logControlPath, logControlProps(log))
	if err != nil {
		return err
	}
	node := &introspect.Node{
		Name: string(logControlPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: logControlIface, Properties: props.Introspection(logControlIface)},
		},
	}
	return conn.Export(introspect.NewIntrospectable(node), logControlPath, "org.freedesktop.DBus.Introspectable")
}
