//go:build !windows

package bash

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/interp"
)

func TestNewProcessGroupExecHandler_Foreground(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("/proc not available")
	}
	tty := foregroundTerminal(strings.NewReader(""))
	if tty == nil {
		t.Skip("not in the foreground of a controlling terminal")
	}
	tty.close()

	handler := NewProcessGroupExecHandler(time.Second)
	runner := newTestRunner(t, func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return handler
	})

	// Fields 5 and 8 of /proc/<pid>/stat are the process group and the
	// terminal's foreground group.
	command := `sh -c 'set -- $(cat /proc/$$/stat); test "$5" = "$8"'`
	_, code, err := RunInSubShell(context.Background(), runner, "", command, strings.NewReader("a\nb\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, code, "child fed through a pipe must run in the foreground group")

	after := foregroundTerminal(nil)
	require.NotNil(t, after, "foreground was not handed back")
	after.close()
}

func TestForegroundTerminal_NoTerminal(t *testing.T) {
	if f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0); err == nil {
		f.Close()
		t.Skip("a controlling terminal is attached")
	}
	assert.Nil(t, foregroundTerminal(strings.NewReader("")))
}
