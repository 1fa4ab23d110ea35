//go:build unix

package daemon

import (
	"github.com/godbus/dbus/v5/introspect"
)

func introspectable(sp *searchProvider, ci *catalogInterface) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{Name: searchProviderIface, Methods: introspect.Methods(sp)},
			{Name: catalogIface, Methods: introspect.Methods(ci)},
		},
	}
	return introspect.NewIntrospectable(node)
}
