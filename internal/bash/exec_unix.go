//go:build !windows

package bash

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/term"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// NewProcessGroupExecHandler returns an ExecHandlerFunc that starts every
// external program in its own process group. When this process owns the
// terminal's foreground, the child's group takes it over for the lifetime of
// the program, so an interactive selector reads the keyboard and receives
// Ctrl+C itself. That holds even when stdin is a pipe feeding candidates:
// the terminal is then reached through /dev/tty.
//
// When ctx is cancelled the group gets SIGINT, and SIGKILL after killTimeout.
// A negative killTimeout kills immediately.
func NewProcessGroupExecHandler(killTimeout time.Duration) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		hc := interp.HandlerCtx(ctx)
		path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
		if err != nil {
			fmt.Fprintln(hc.Stderr, err)
			return interp.ExitStatus(127)
		}

		attr := &syscall.SysProcAttr{Setpgid: true}
		tty := foregroundTerminal(hc.Stdin)
		if tty != nil {
			defer tty.close()
			// The child moves itself into the foreground before exec, so it
			// cannot touch the terminal while still in a background group.
			attr.Foreground = true
			attr.Ctty = tty.fd
		}

		cmd := exec.Cmd{
			Path:        path,
			Args:        args,
			Dir:         hc.Dir,
			Env:         execEnv(hc.Env),
			Stdin:       hc.Stdin,
			Stdout:      hc.Stdout,
			Stderr:      hc.Stderr,
			SysProcAttr: attr,
		}

		if err := cmd.Start(); err != nil {
			return err
		}
		pgid := cmd.Process.Pid
		if tty != nil {
			defer tty.restore()
		}

		waitDone := make(chan error, 1)
		go func() {
			waitDone <- cmd.Wait()
		}()

		select {
		case err := <-waitDone:
			return exitStatusOf(err)
		case <-ctx.Done():
		}

		if killTimeout < 0 {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
			return exitStatusOf(<-waitDone)
		}

		_ = syscall.Kill(-pgid, syscall.SIGINT)
		select {
		case err := <-waitDone:
			return exitStatusOf(err)
		case <-time.After(killTimeout):
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		}
		return exitStatusOf(<-waitDone)
	}
}

// terminal is a controlling terminal whose foreground this process owns.
type terminal struct {
	file     *os.File
	owned    bool
	fd       int
	original int
}

// foregroundTerminal returns the controlling terminal if this process is in
// its foreground group, or nil. stdin is used when it is the terminal;
// otherwise /dev/tty is opened.
func foregroundTerminal(stdin any) *terminal {
	t := &terminal{}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.file = f
	} else {
		f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
		if err != nil {
			return nil
		}
		t.file, t.owned = f, true
	}
	t.fd = int(t.file.Fd())

	pgrp, err := tcgetpgrp(t.fd)
	if err != nil || pgrp <= 0 || pgrp != syscall.Getpgrp() {
		t.close()
		return nil
	}
	t.original = pgrp
	return t
}

// restore gives the foreground back to the original group. The caller is a
// background group at this point, so SIGTTOU is ignored around the call.
func (t *terminal) restore() {
	signal.Ignore(syscall.SIGTTOU)
	defer signal.Reset(syscall.SIGTTOU)
	_ = tcsetpgrp(t.fd, t.original)
}

func (t *terminal) close() {
	if t.owned {
		t.file.Close()
	}
}

// exitStatusOf maps a finished process to the interp.ExitStatus the
// interpreter expects, so $? and the caller see the real exit code.
func exitStatusOf(err error) error {
	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			return interp.ExitStatus(128 + int(status.Signal()))
		}
		return interp.ExitStatus(exitErr.ExitCode())
	}
	return err
}

// tcgetpgrp returns the foreground process group ID of the terminal.
func tcgetpgrp(fd int) (int, error) {
	var pgrp int32
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TIOCGPGRP, uintptr(unsafe.Pointer(&pgrp)))
	if errno != 0 {
		return 0, errno
	}
	return int(pgrp), nil
}

// tcsetpgrp sets the foreground process group ID of the terminal.
func tcsetpgrp(fd int, pgrp int) error {
	pgrp32 := int32(pgrp)
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TIOCSPGRP, uintptr(unsafe.Pointer(&pgrp32)))
	if errno != 0 {
		return errno
	}
	return nil
}

// execEnv converts the interpreter's exported variables to exec.Cmd.Env.
func execEnv(env expand.Environ) []string {
	var result []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported {
			result = append(result, name+"="+vr.String())
		}
		return true
	})
	return result
}
