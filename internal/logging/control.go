package logging

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// ErrInvalidLevel is returned for a syslog level name that is not known
	ErrInvalidLevel = errors.New("invalid log level")
	// ErrInvalidTarget is returned for an unsupported log target
	ErrInvalidTarget = errors.New("invalid log target")
)

// Log targets accepted by SetTarget. Output always goes to stderr, which the
// service manager forwards to the journal; "null" silences it.
const (
	TargetAuto    = "auto"
	TargetConsole = "console"
	TargetJournal = "journal"
	TargetNull    = "null"
)

type control struct {
	atom zap.AtomicLevel

	mu     sync.Mutex
	level  zapcore.Level // level to report and restore; atom may be muted
	target string
}

func newControl(lvl zapcore.Level) *control {
	return &control{atom: zap.NewAtomicLevelAt(lvl), level: lvl, target: TargetAuto}
}

// syslog names in severity order, mapped onto zap levels
var syslogLevels = []struct {
	name  string
	level zapcore.Level
}{
	{"emerg", zapcore.FatalLevel},
	{"alert", zapcore.FatalLevel},
	{"crit", zapcore.DPanicLevel},
	{"err", zapcore.ErrorLevel},
	{"warning", zapcore.WarnLevel},
	{"notice", zapcore.InfoLevel},
	{"info", zapcore.InfoLevel},
	{"debug", zapcore.DebugLevel},
}

// SyslogLevel reports the current level as a syslog level name.
func (l *Logger) SyslogLevel() string {
	l.ctl.mu.Lock()
	defer l.ctl.mu.Unlock()
	return syslogName(l.ctl.level)
}

// SetSyslogLevel changes the level of this logger and all its children.
func (l *Logger) SetSyslogLevel(name string) error {
	var lvl zapcore.Level
	found := false
	for _, s := range syslogLevels {
		if s.name == name {
			lvl, found = s.level, true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}

	l.ctl.mu.Lock()
	defer l.ctl.mu.Unlock()
	l.ctl.level = lvl
	if l.ctl.target != TargetNull {
		l.ctl.atom.SetLevel(lvl)
	}
	return nil
}

// Target reports the current log target.
func (l *Logger) Target() string {
	l.ctl.mu.Lock()
	defer l.ctl.mu.Unlock()
	return l.ctl.target
}

// SetTarget changes the log target.
func (l *Logger) SetTarget(target string) error {
	switch target {
	case TargetAuto, TargetConsole, TargetJournal, TargetNull:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	l.ctl.mu.Lock()
	defer l.ctl.mu.Unlock()
	l.ctl.target = target
	if target == TargetNull {
		l.ctl.atom.SetLevel(zapcore.InvalidLevel)
	} else {
		l.ctl.atom.SetLevel(l.ctl.level)
	}
	return nil
}

// Enabled reports whether entries at lvl are currently written.
func (l *Logger) Enabled(lvl zapcore.Level) bool {
	return l.ctl.atom.Enabled(lvl) && l.Core().Enabled(lvl)
}

func syslogName(lvl zapcore.Level) string {
	// most verbose name wins for shared zap levels (info over notice)
	name := "emerg"
	for _, s := range syslogLevels {
		if s.level == lvl {
			name = s.name
		}
	}
	if lvl < zapcore.DebugLevel {
		return "debug"
	}
	return name
}
