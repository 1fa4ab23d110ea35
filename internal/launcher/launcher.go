// Package launcher starts IDE processes and moves each one into its own
// systemd scope.
//
// Spawning is synchronous: the caller learns about a failed spawn. Moving
// the process into a scope happens afterwards in the background, once, and
// failures there are only logged; the IDE keeps running in the service's
// own cgroup.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/unit"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gurisko/jbsearch/internal/catalog"
	"github.com/gurisko/jbsearch/internal/logging"
	"github.com/gurisko/jbsearch/internal/registry"
)

var (
	// ErrNoExecutable indicates no executable could be found for a product
	ErrNoExecutable = errors.New("no executable found")
	// ErrSpawn indicates the executable could not be started
	ErrSpawn = errors.New("failed to spawn")
)

// DefaultScopePrefix starts every scope name.
const DefaultScopePrefix = "app-jbsearch"

// Process is a started child process.
type Process interface {
	Pid() int
	// Exited reports whether the process has already terminated.
	Exited() bool
	// Release frees the handle. The process itself is unaffected.
	Release() error
}

// Spawner starts executables.
type Spawner interface {
	Spawn(exe string, args []string) (Process, error)
}

// ScopeManager moves a process into a new transient scope unit.
type ScopeManager interface {
	StartScope(ctx context.Context, name, description string, pid int) error
}

// Handle describes a launch that was dispatched.
type Handle struct {
	LaunchID string
	Product  string
	PID      int
	Scope    string
}

// Config holds launcher settings.
type Config struct {
	ScopePrefix string
	Executables map[string]string // product id -> executable override
}

// Launcher spawns IDEs and hands them to the scope manager.
type Launcher struct {
	spawner  Spawner
	scopes   ScopeManager
	cfg      Config
	log      *logging.Logger
	lookPath func(string) (string, error)

	pending sync.WaitGroup
}

// New creates a launcher.
func New(spawner Spawner, scopes ScopeManager, cfg Config, log *logging.Logger) *Launcher {
	if cfg.ScopePrefix == "" {
		cfg.ScopePrefix = DefaultScopePrefix
	}
	return &Launcher{
		spawner:  spawner,
		scopes:   scopes,
		cfg:      cfg,
		log:      log.Named("launcher"),
		lookPath: exec.LookPath,
	}
}

// Open launches the product's IDE on the record's project.
func (l *Launcher) Open(ctx context.Context, p *registry.Product, rec *catalog.Record) (*Handle, error) {
	return l.launch(ctx, p, rec, []string{rec.Path})
}

// Start launches the product's IDE without a project. hint, when non-nil,
// is a record of the product whose executable may be reused.
func (l *Launcher) Start(ctx context.Context, p *registry.Product, hint *catalog.Record) (*Handle, error) {
	return l.launch(ctx, p, hint, nil)
}

// Wait blocks until all pending scope transfers have finished.
func (l *Launcher) Wait() {
	l.pending.Wait()
}

func (l *Launcher) launch(ctx context.Context, p *registry.Product, rec *catalog.Record, args []string) (*Handle, error) {
	launchID := uuid.NewString()
	log := l.log.With(zap.String("launch_id", launchID), zap.String("product", p.ID))

	exe, err := l.Executable(p, rec)
	if err != nil {
		log.Error("no executable", zap.Error(err))
		return nil, err
	}

	proc, err := l.spawner.Spawn(exe, args)
	if err != nil {
		log.Error("spawn failed", zap.String("executable", exe), zap.Error(err))
		return nil, fmt.Errorf("%w %s: %w", ErrSpawn, exe, err)
	}

	h := &Handle{
		LaunchID: launchID,
		Product:  p.ID,
		PID:      proc.Pid(),
		Scope:    ScopeName(l.cfg.ScopePrefix, p, proc.Pid()),
	}
	log.Info("spawned", zap.String("executable", exe), zap.Strings("args", args), zap.Int("pid", h.PID))

	// the transfer outlives the bus call that triggered it
	tctx := context.WithoutCancel(ctx)
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		l.transfer(tctx, log, p, h, proc)
	}()
	return h, nil
}

func (l *Launcher) transfer(ctx context.Context, log *logging.Logger, p *registry.Product, h *Handle, proc Process) {
	defer func() {
		if err := proc.Release(); err != nil {
			log.Debug("failed to release process handle", zap.Error(err))
		}
	}()
	log = log.With(zap.Int("pid", h.PID), zap.String("scope", h.Scope))

	if proc.Exited() {
		log.Warn("process exited before scope transfer")
		return
	}

	desc := fmt.Sprintf("%s launched by jbsearch", productName(p))
	if err := l.scopes.StartScope(ctx, h.Scope, desc, h.PID); err != nil {
		log.Error("scope transfer failed; process keeps running in the service scope", zap.Error(err))
		return
	}
	log.Info("moved process into scope")
}

// Executable resolves what to run for a product: the record's own executable
// (toolbox installs), then the configured override, then the first of the
// product's candidates found on PATH.
func (l *Launcher) Executable(p *registry.Product, rec *catalog.Record) (string, error) {
	if rec != nil && rec.Executable != "" {
		return rec.Executable, nil
	}
	if exe := l.cfg.Executables[p.ID]; exe != "" {
		if filepath.IsAbs(exe) {
			return exe, nil
		}
		if found, err := l.lookPath(exe); err == nil {
			return found, nil
		}
		return "", fmt.Errorf("%w: override %q for %s is not on PATH", ErrNoExecutable, exe, p.ID)
	}
	for _, candidate := range p.Executables {
		if found, err := l.lookPath(candidate); err == nil {
			return found, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", ErrNoExecutable, p.ID, strings.Join(p.Executables, ", "))
}

// ScopeName builds "<prefix>-<escaped app id>-<pid>.scope". The app id is
// the product's desktop id without its suffix.
func ScopeName(prefix string, p *registry.Product, pid int) string {
	app := strings.TrimSuffix(p.DesktopID, ".desktop")
	if app == "" {
		app = p.ID
	}
	return fmt.Sprintf("%s-%s-%d.scope", prefix, unit.UnitNameEscape(app), pid)
}

func productName(p *registry.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
