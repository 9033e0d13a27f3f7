//go:build windows

package bash

import (
	"time"

	"mvdan.cc/sh/v3/interp"
)

// NewProcessGroupExecHandler uses the interpreter's default handler; there
// are no process groups to hand the console to on Windows.
func NewProcessGroupExecHandler(killTimeout time.Duration) interp.ExecHandlerFunc {
	return interp.DefaultExecHandler(killTimeout)
}
