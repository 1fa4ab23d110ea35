//go:build unix

package daemon

import (
	"context"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/provider"
)

const (
	searchProviderIface = "org.gnome.Shell.SearchProvider2"
	catalogIface        = "io.github.gurisko.jbsearch.Catalog"
	introspectIface     = "org.freedesktop.DBus.Introspectable"
)

// searchProvider adapts provider.Provider to org.gnome.Shell.SearchProvider2.
// Every exported method is exported on the bus.
type searchProvider struct {
	ctx context.Context
	p   *provider.Provider
	log *logging.Logger
}

func (s *searchProvider) GetInitialResultSet(terms []string) ([]string, *dbus.Error) {
	return s.p.InitialResultSet(terms), nil
}

func (s *searchProvider) GetSubsearchResultSet(previous []string, terms []string) ([]string, *dbus.Error) {
	return s.p.SubsequentResultSet(previous, terms), nil
}

func (s *searchProvider) GetResultMetas(ids []string) ([]map[string]dbus.Variant, *dbus.Error) {
	metas := s.p.ResultMetas(ids)
	out := make([]map[string]dbus.Variant, 0, len(metas))
	for _, m := range metas {
		out = append(out, map[string]dbus.Variant{
			"id":          dbus.MakeVariant(m.ID),
			"name":        dbus.MakeVariant(m.Name),
			"description": dbus.MakeVariant(m.Description),
			"gicon":       dbus.MakeVariant(m.Icon),
		})
	}
	return out, nil
}

func (s *searchProvider) ActivateResult(id string, terms []string, timestamp uint32) *dbus.Error {
	if err := s.p.ActivateResult(s.ctx, id, terms, timestamp); err != nil {
		s.log.Error("ActivateResult failed", zap.String("result_id", id), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (s *searchProvider) LaunchSearch(terms []string, timestamp uint32) *dbus.Error {
	if err := s.p.LaunchSearch(s.ctx, terms, timestamp); err != nil {
		s.log.Error("LaunchSearch failed", zap.Strings("terms", terms), zap.Error(err))
		return dbus.MakeFailedError(err)
	}
	return nil
}

// catalogInterface is the explicit refresh trigger used by `jbsearch refresh`
// and `jbsearch watch`.
type catalogInterface struct {
	ctx context.Context
	d   *Daemon
}

func (c *catalogInterface) Refresh() *dbus.Error {
	c.d.log.Info("refresh requested over the bus")
	if _, err := c.d.catalog.Refresh(c.ctx); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (c *catalogInterface) Stats() (map[string]uint32, *dbus.Error) {
	counts := c.d.catalog.Current().Counts()
	out := make(map[string]uint32, len(counts))
	for product, n := range counts {
		out[product] = uint32(n)
	}
	return out, nil
}
