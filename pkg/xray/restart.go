package xray

import (
	"os/exec"
)

// Restarter asks the process supervisor to bounce the daemon so that a
// rewritten config takes effect.
type Restarter interface {
	Restart() error
}

// SystemdRestarter restarts the daemon's systemd unit. There is no
// rollback: the caller has already committed the config to disk.
type SystemdRestarter struct {
	Unit string
}

func (r SystemdRestarter) Restart() error {
	unit := r.Unit
	if unit == "" {
		unit = "xray"
	}
	return exec.Command("systemctl", "restart", unit).Run()
}
