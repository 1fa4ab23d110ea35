package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)

	_, err = New(Config{Format: "xml"})
	require.Error(t, err)

	l, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "debug", l.SyslogLevel())
}

func TestSyslogLevelRoundTrip(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "info", l.SyslogLevel())

	tests := []struct {
		set  string
		want string
	}{
		{"debug", "debug"},
		{"warning", "warning"},
		{"err", "err"},
		{"notice", "info"},
		{"crit", "crit"},
		{"emerg", "alert"},
	}
	for _, tt := range tests {
		t.Run(tt.set, func(t *testing.T) {
			require.NoError(t, l.SetSyslogLevel(tt.set))
			assert.Equal(t, tt.want, l.SyslogLevel())
		})
	}

	assert.ErrorIs(t, l.SetSyslogLevel("verbose"), ErrInvalidLevel)
}

func TestChildrenShareLevel(t *testing.T) {
	l, err := New(Config{Level: "info"})
	require.NoError(t, err)
	child := l.Named("discovery")

	assert.False(t, child.Enabled(zapcore.DebugLevel))
	require.NoError(t, l.SetSyslogLevel("debug"))
	assert.True(t, child.Enabled(zapcore.DebugLevel))
}

func TestNullTargetMutesAndRestores(t *testing.T) {
	l, err := New(Config{Level: "info"})
	require.NoError(t, err)

	require.NoError(t, l.SetTarget(TargetNull))
	assert.False(t, l.Enabled(zapcore.ErrorLevel))
	assert.Equal(t, "info", l.SyslogLevel())

	require.NoError(t, l.SetSyslogLevel("debug"))
	assert.False(t, l.Enabled(zapcore.ErrorLevel))

	require.NoError(t, l.SetTarget(TargetJournal))
	assert.True(t, l.Enabled(zapcore.DebugLevel))
	assert.Equal(t, TargetJournal, l.Target())

	assert.ErrorIs(t, l.SetTarget("kmsg"), ErrInvalidTarget)
}
