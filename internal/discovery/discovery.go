// Package discovery reads recent-project records of every registered product
// from disk and normalizes them into catalog records.
//
// Source problems are never fatal: a missing file contributes nothing, a
// malformed entry is skipped and a file that fails to parse is logged and
// treated as empty. Discovery of one product never affects another.
package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/limits"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/paths"
	"github.com/gurisko/jbsearch/internal/registry"
)

const defaultWorkers = 4

// Options tune what discovery reads.
type Options struct {
	Dirs             paths.Dirs
	AllVersions      bool // read every version dir of a classic product, not just the newest
	ReadProjectNames bool // fall back to .idea/.name before the path basename
	GitBranch        bool // record the checked-out branch of each project
	Workers          int
}

// Discoverer reads all products of a registry. It implements catalog.Source.
type Discoverer struct {
	reg  *registry.Registry
	opts Options
	log  *logging.Logger
}

// New creates a discoverer.
func New(reg *registry.Registry, opts Options, log *logging.Logger) *Discoverer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Discoverer{reg: reg, opts: opts, log: log.Named("discovery")}
}

// Sources lists every file discovery would read, grouped by product in
// registry order.
func (d *Discoverer) Sources() []Source {
	var out []Source
	for _, p := range d.reg.List() {
		srcs, err := Locate(p, d.opts.Dirs, d.opts.AllVersions)
		if err != nil {
			d.log.Warn("failed to locate sources", zap.String("product", p.ID), zap.Error(err))
			continue
		}
		out = append(out, srcs...)
	}
	return out
}

// Discover reads every product concurrently and returns the combined records.
// Products come out in registry order regardless of scheduling.
func (d *Discoverer) Discover(ctx context.Context) []catalog.Record {
	products := d.reg.List()
	results := make([][]catalog.Record, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i, p := range products {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			results[i] = d.Product(gctx, p)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	var out []catalog.Record
	for _, recs := range results {
		out = append(out, recs...)
	}
	return out
}

// Product discovers the records of a single product.
func (d *Discoverer) Product(ctx context.Context, p *registry.Product) []catalog.Record {
	log := d.log.With(zap.String("product", p.ID))

	sources, err := Locate(p, d.opts.Dirs, d.opts.AllVersions)
	if err != nil {
		log.Warn("failed to locate sources", zap.Error(err))
		return nil
	}
	if len(sources) == 0 {
		log.Debug("no sources found")
		return nil
	}

	var records []catalog.Record
	for _, src := range sources {
		if ctx.Err() != nil {
			return nil
		}
		entries, err := d.readSource(src)
		if err != nil {
			log.Warn("ignoring unreadable source", zap.String("source", src.Path), zap.Error(err))
			continue
		}
		for _, e := range entries {
			records = append(records, d.normalize(p, e))
		}
	}

	records = dedupe(records)
	log.Debug("discovered projects", zap.Int("projects", len(records)), zap.Int("sources", len(sources)))
	return records
}

func (d *Discoverer) readSource(src Source) ([]entry, error) {
	data, err := readLimited(src.Path, limits.SourceFile)
	if err != nil {
		return nil, err
	}

	home := d.opts.Dirs.HomeDir()
	var (
		entries []entry
		skipped int
	)
	switch src.Product.Format {
	case registry.FormatClassic:
		entries, skipped, err = parseClassic(bytes.NewReader(data), home)
	case registry.FormatToolbox:
		entries, skipped, err = parseToolbox(data, src.Product.Codes, home)
	default:
		err = fmt.Errorf("%w: %q", registry.ErrUnknownFormat, src.Product.Format)
	}
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		d.log.Debug("skipped malformed entries",
			zap.String("product", src.Product.ID),
			zap.String("source", src.Path),
			zap.Int("skipped", skipped),
		)
	}
	return entries, nil
}

// normalize turns a parsed entry into a record, resolving the display name.
func (d *Discoverer) normalize(p *registry.Product, e entry) catalog.Record {
	rec := e.record(p.ID)
	if rec.Name == "" && d.opts.ReadProjectNames {
		rec.Name = readProjectName(rec.Path)
	}
	rec.Name = catalog.DisplayName(rec.Name, rec.Path)
	if d.opts.GitBranch {
		rec.Branch = detectGitBranch(rec.Path)
	}
	return rec
}

// dedupe collapses records sharing (product, path). The later record wins
// and takes the position of the first.
func dedupe(records []catalog.Record) []catalog.Record {
	seen := make(map[catalog.ID]int, len(records))
	out := records[:0:0]
	for _, rec := range records {
		id := rec.ID()
		if i, ok := seen[id]; ok {
			out[i] = rec
			continue
		}
		seen[id] = len(out)
		out = append(out, rec)
	}
	return out
}

func readLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%s exceeds %d bytes", path, max)
	}
	return data, nil
}
