//go:build unix

package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/config"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/provider"
)

// ErrNameTaken means another process already owns the bus name
var ErrNameTaken = errors.New("bus name already taken")

const defaultDrainTimeout = 5 * time.Second

// Conn is the part of a bus connection the daemon uses. *dbus.Conn
// satisfies it.
type Conn interface {
	RequestName(name string, flags dbus.RequestNameFlags) (dbus.RequestNameReply, error)
	Export(v any, path dbus.ObjectPath, iface string) error
	Close() error
}

// Refresher rebuilds the catalog.
type Refresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
	Current() *catalog.Snapshot
}

// Waiter is implemented by components with background work to drain on exit.
type Waiter interface {
	Wait()
}

type Config struct {
	BusName    string
	ObjectPath dbus.ObjectPath
}

func DefaultConfig() *Config {
	return &Config{
		BusName:    config.BusName,
		ObjectPath: config.ObjectPath,
	}
}

// Daemon serves the search provider on the session bus.
type Daemon struct {
	cfg      Config
	catalog  Refresher
	provider *provider.Provider
	log      *logging.Logger
	pending  Waiter

	dial   func() (Conn, error)
	notify func(state string) error

	// how long shutdown waits for pending launches
	drainTimeout time.Duration

	startTime time.Time
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithDialer replaces the session bus connection, e.g. with a fake in tests.
func WithDialer(dial func() (Conn, error)) Option {
	return func(d *Daemon) { d.dial = dial }
}

// WithNotifier replaces systemd readiness notification.
func WithNotifier(notify func(state string) error) Option {
	return func(d *Daemon) { d.notify = notify }
}

// WithPending makes shutdown wait for w's background work.
func WithPending(w Waiter) Option {
	return func(d *Daemon) { d.pending = w }
}

func New(cfg *Config, cat Refresher, p *provider.Provider, log *logging.Logger, opts ...Option) *Daemon {
	defaults := DefaultConfig()
	c := *cfg
	if c.BusName == "" {
		c.BusName = defaults.BusName
	}
	if c.ObjectPath == "" {
		c.ObjectPath = defaults.ObjectPath
	}

	d := &Daemon{
		cfg:      c,
		catalog:  cat,
		provider: p,
		log:      log.Named("daemon"),
		dial: func() (Conn, error) {
			return dbus.ConnectSessionBus()
		},
		notify:       sdNotify,
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run owns the bus name, publishes the first snapshot, exports the objects
// and serves until ctx is done or SIGINT/SIGTERM arrives. SIGHUP refreshes
// the catalog. If the name is already owned nothing is exported and
// ErrNameTaken is returned.
func (d *Daemon) Run(ctx context.Context) error {
	d.startTime = time.Now().UTC()

	conn, err := d.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	reply, err := conn.RequestName(d.cfg.BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request name %s: %w", d.cfg.BusName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("%w: %s", ErrNameTaken, d.cfg.BusName)
	}
	d.log.Info("acquired bus name", zap.String("name", d.cfg.BusName))

	if _, err := d.catalog.Refresh(ctx); err != nil {
		return err
	}

	if err := d.export(ctx, conn); err != nil {
		return err
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	d.ready()
	d.log.Info("serving",
		zap.String("object_path", string(d.cfg.ObjectPath)),
		zap.Int("projects", d.catalog.Current().Len()),
		zap.Int("pid", os.Getpid()),
	)

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				d.reload(ctx)
				continue
			}
			d.log.Info("received signal, shutting down", zap.Stringer("signal", sig))
			d.shutdown()
			return nil
		}
	}
}

func (d *Daemon) export(ctx context.Context, conn Conn) error {
	sp := &searchProvider{ctx: ctx, p: d.provider, log: d.log}
	ci := &catalogInterface{ctx: ctx, d: d}

	if err := conn.Export(sp, d.cfg.ObjectPath, searchProviderIface); err != nil {
		return fmt.Errorf("failed to export %s: %w", searchProviderIface, err)
	}
	if err := conn.Export(ci, d.cfg.ObjectPath, catalogIface); err != nil {
		return fmt.Errorf("failed to export %s: %w", catalogIface, err)
	}
	if err := conn.Export(introspectable(sp, ci), d.cfg.ObjectPath, introspectIface); err != nil {
		return fmt.Errorf("failed to export introspection: %w", err)
	}

	// LogControl1 needs the property machinery of a real connection
	if real, ok := conn.(*dbus.Conn); ok {
		if err := exportLogControl(real, d.log); err != nil {
			d.log.Warn("log control unavailable", zap.Error(err))
		}
	}
	return nil
}

// reload is the refresh triggered by SIGHUP.
func (d *Daemon) reload(ctx context.Context) {
	d.notifyState(reloadingState())
	defer d.ready()

	if _, err := d.catalog.Refresh(ctx); err != nil {
		d.log.Warn("reload failed", zap.Error(err))
	}
}

func (d *Daemon) ready() {
	d.notifyState(fmt.Sprintf("READY=1\nSTATUS=Serving %d projects", d.catalog.Current().Len()))
}

func (d *Daemon) shutdown() {
	d.notifyState("STOPPING=1")
	d.drain()
	d.log.Info("stopped", zap.Duration("uptime", time.Since(d.startTime).Round(time.Second)))
}

// drain waits for pending launches, up to drainTimeout. Launched IDEs keep
// running either way; only their scope transfer may be cut short.
func (d *Daemon) drain() {
	if d.pending == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d.drainTimeout):
		d.log.Warn("gave up waiting for pending launches", zap.Duration("timeout", d.drainTimeout))
	}
}

func (d *Daemon) notifyState(state string) {
	if err := d.notify(state); err != nil {
		d.log.Debug("sd_notify failed", zap.Error(err))
	}
}
