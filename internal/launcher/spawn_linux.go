package launcher

import (
	"os/exec"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/gurisko/jbsearch/internal/logging"
)

// ExecSpawner starts processes in their own session with stdio on /dev/null.
type ExecSpawner struct {
	log *logging.Logger
}

// NewExecSpawner creates the default spawner.
func NewExecSpawner(log *logging.Logger) *ExecSpawner {
	return &ExecSpawner{log: log.Named("spawn")}
}

// Spawn starts exe and pins it with a pidfd. The child is reaped in the
// background so it never lingers as a zombie.
func (s *ExecSpawner) Spawn(exe string, args []string) (Process, error) {
	cmd := exec.Command(exe, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	// nil stdio means /dev/null

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{pid: cmd.Process.Pid, pidfd: -1, done: make(chan struct{})}
	// the child cannot be reaped before Wait runs, so the pid is still ours here
	if fd, err := unix.PidfdOpen(p.pid, 0); err == nil {
		p.pidfd = fd
	} else {
		s.log.Debug("pidfd unavailable, falling back to wait status", zap.Int("pid", p.pid), zap.Error(err))
	}

	go func() {
		err := cmd.Wait()
		close(p.done)
		s.log.Debug("child exited", zap.Int("pid", p.pid), zap.Error(err))
	}()
	return p, nil
}

type execProcess struct {
	pid   int
	pidfd int
	done  chan struct{}
}

func (p *execProcess) Pid() int { return p.pid }

func (p *execProcess) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
	}
	if p.pidfd < 0 {
		return false
	}
	// a pidfd becomes readable once the process terminates
	fds := []unix.PollFd{{Fd: int32(p.pidfd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	return err == nil && n > 0
}

func (p *execProcess) Release() error {
	if p.pidfd < 0 {
		return nil
	}
	fd := p.pidfd
	p.pidfd = -1
	return unix.Close(fd)
}
