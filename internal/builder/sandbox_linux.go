//go:build linux

package builder

import (
	"os/exec"
	"syscall"
)

// applySandboxAttrs isolates cmd in new user, mount, PID, IPC, and UTS
// namespaces, matching the isolation neve-builder's sandbox.rs describes
// for Linux. The network namespace is added too unless the derivation is
// fixed-output, the one case that's allowed to reach the network.
//
// Creating these namespaces requires either root or unprivileged user
// namespaces enabled on the kernel (the same
// /proc/sys/kernel/unprivileged_userns_clone check the original makes);
// when Cmd.Start fails because of that, the caller falls back to running
// the command unsandboxed rather than failing the build outright.
func applySandboxAttrs(cmd *exec.Cmd, network bool) {
	flags := syscall.CLONE_NEWUSER | syscall.CLONE_NEWNS | syscall.CLONE_NEWPID |
		syscall.CLONE_NEWIPC | syscall.CLONE_NEWUTS
	if !network {
		flags |= syscall.CLONE_NEWNET
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags:                 uintptr(flags),
		UidMappings:                []syscall.SysProcIDMap{{ContainerID: 0, HostID: syscall.Getuid(), Size: 1}},
		GidMappings:                []syscall.SysProcIDMap{{ContainerID: 0, HostID: syscall.Getgid(), Size: 1}},
		GidMappingsEnableSetgroups: false,
	}
}
