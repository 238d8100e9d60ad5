//go:build unix

package generator

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup runs the engine in its own process group so a timeout
// kills any children it spawned along with it.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
