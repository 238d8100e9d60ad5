//go:build !unix

package generator

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
