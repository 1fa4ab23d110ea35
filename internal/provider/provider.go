// Package provider implements the search provider operations on top of the
// catalog, the matcher and the launcher. It knows nothing about the bus;
// the daemon adapts it.
//
// Every operation captures the current snapshot exactly once on entry, so a
// concurrent refresh never splits one call across two snapshots.
package provider

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/launcher"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/match"
	"github.com/gurisko/jbsearch/internal/registry"
)

var (
	// ErrUnknownResult indicates an activation for an id not in the current snapshot
	ErrUnknownResult = errors.New("unknown result")
	// ErrNothingToLaunch indicates LaunchSearch found no match and has no default product
	ErrNothingToLaunch = errors.New("nothing to launch")
)

// Snapshots yields the current catalog snapshot.
type Snapshots interface {
	Current() *catalog.Snapshot
}

// Launcher starts IDEs.
type Launcher interface {
	Open(ctx context.Context, p *registry.Product, rec *catalog.Record) (*launcher.Handle, error)
	Start(ctx context.Context, p *registry.Product, hint *catalog.Record) (*launcher.Handle, error)
}

// Meta is what the shell displays for one result.
type Meta struct {
	ID          string
	Name        string
	Description string
	Icon        string
}

// Options tune provider behavior.
type Options struct {
	// DefaultProduct is launched by LaunchSearch when nothing matches.
	DefaultProduct string
}

// Provider answers search provider calls. It is safe for concurrent use.
type Provider struct {
	snaps    Snapshots
	reg      *registry.Registry
	launcher Launcher
	opts     Options
	log      *logging.Logger
}

// New creates a provider.
func New(snaps Snapshots, reg *registry.Registry, l Launcher, opts Options, log *logging.Logger) *Provider {
	return &Provider{snaps: snaps, reg: reg, launcher: l, opts: opts, log: log.Named("provider")}
}

// InitialResultSet returns the ids of every project matching terms, best first.
func (p *Provider) InitialResultSet(terms []string) []string {
	snap := p.snaps.Current()
	return encode(match.Snapshot(snap, match.Terms(terms)))
}

// SubsequentResultSet refines a previous result set with new terms. The
// result only ever contains ids from previous, in matcher order.
func (p *Provider) SubsequentResultSet(previous, terms []string) []string {
	snap := p.snaps.Current()

	allowed := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		allowed[id] = struct{}{}
	}

	out := make([]string, 0, len(previous))
	for _, id := range match.Snapshot(snap, match.Terms(terms)) {
		s := id.String()
		if _, ok := allowed[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// ResultMetas describes the given ids. Ids that are malformed or absent from
// the current snapshot are left out.
func (p *Provider) ResultMetas(ids []string) []Meta {
	snap := p.snaps.Current()

	out := make([]Meta, 0, len(ids))
	for _, raw := range ids {
		rec, err := lookup(snap, raw)
		if err != nil {
			p.log.Debug("omitting meta for unknown result", zap.String("result_id", raw))
			continue
		}
		m := Meta{ID: raw, Name: rec.Name, Description: rec.Path}
		if rec.Branch != "" {
			m.Description = fmt.Sprintf("%s (%s)", rec.Path, rec.Branch)
		}
		if prod, err := p.reg.Get(rec.Product); err == nil {
			m.Icon = prod.Icon
		}
		out = append(out, m)
	}
	return out
}

// ActivateResult opens the project behind id in its IDE. It returns once the
// process is spawned.
func (p *Provider) ActivateResult(ctx context.Context, id string, terms []string, timestamp uint32) error {
	snap := p.snaps.Current()
	log := p.log.With(zap.String("result_id", id))

	rec, err := lookup(snap, id)
	if err != nil {
		log.Warn("activation of unknown result", zap.Error(err))
		return err
	}
	prod, err := p.reg.Get(rec.Product)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownResult, err)
	}

	log.Debug("activating", zap.Strings("terms", terms), zap.Uint32("timestamp", timestamp))
	if _, err := p.launcher.Open(ctx, prod, rec); err != nil {
		return fmt.Errorf("failed to launch %s for %s: %w", prod.ID, rec.Path, err)
	}
	return nil
}

// LaunchSearch starts the IDE of the best match without opening a project.
// When nothing matches the configured default product is started instead.
func (p *Provider) LaunchSearch(ctx context.Context, terms []string, timestamp uint32) error {
	snap := p.snaps.Current()
	log := p.log.With(zap.Strings("terms", terms), zap.Uint32("timestamp", timestamp))

	var (
		prod *registry.Product
		hint *catalog.Record
		err  error
	)
	if ids := match.Snapshot(snap, match.Terms(terms)); len(ids) > 0 {
		hint, _ = snap.Get(ids[0])
		prod, err = p.reg.Get(ids[0].Product)
	} else if p.opts.DefaultProduct != "" {
		prod, err = p.reg.Get(p.opts.DefaultProduct)
	} else {
		return ErrNothingToLaunch
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNothingToLaunch, err)
	}

	log.Debug("launching product", zap.String("product", prod.ID))
	if _, err := p.launcher.Start(ctx, prod, hint); err != nil {
		return fmt.Errorf("failed to launch %s: %w", prod.ID, err)
	}
	return nil
}

func lookup(snap *catalog.Snapshot, raw string) (*catalog.Record, error) {
	id, err := catalog.ParseID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownResult, err)
	}
	rec, ok := snap.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResult, raw)
	}
	return rec, nil
}

func encode(ids []catalog.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
