//go:build unix

package daemon

import (
	"fmt"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sys/unix"
)

// sdNotify reports state to systemd. Outside a notify-type unit it does nothing.
func sdNotify(state string) error {
	_, err := sddaemon.SdNotify(false, state)
	return err
}

// reloadingState builds the RELOADING message. Type=notify-reload units
// require the monotonic timestamp alongside it.
func reloadingState() string {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return sddaemon.SdNotifyReloading
	}
	usec := ts.Nano() / 1000
	return fmt.Sprintf("%s\nMONOTONIC_USEC=%d", sddaemon.SdNotifyReloading, usec)
}
