package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// serverInfo is written next to the pid file so `serve status` can find
// the listen address of a running server.
type serverInfo struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	Policy    string    `json:"policy"`
}

// serverFiles owns the pid file of a server and the info file beside it.
type serverFiles struct {
	pidPath string
}

func (f serverFiles) infoPath() string { return f.pidPath + ".json" }

// claim fails when a live server already holds the pid file, clears a stale
// one, and records pid as the new owner.
func (f serverFiles) claim(pid int) error {
	if err := f.checkFree(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.pidPath), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(f.pidPath), err)
	}
	return os.WriteFile(f.pidPath, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func (f serverFiles) checkFree() error {
	pid, err := f.pid()
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return err
	case pidAlive(pid):
		return fmt.Errorf("server already running (pid %d)", pid)
	}
	f.release()
	return nil
}

func (f serverFiles) release() {
	_ = os.Remove(f.pidPath)
	_ = os.Remove(f.infoPath())
}

func (f serverFiles) pid() (int, error) {
	raw, err := os.ReadFile(f.pidPath) //nolint:gosec // path comes from the local user's flags
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %s is corrupt", f.pidPath)
	}
	return pid, nil
}

func (f serverFiles) writeInfo(info serverInfo) error {
	raw, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.infoPath(), append(raw, '\n'), 0o600)
}

func (f serverFiles) info() (serverInfo, error) {
	var info serverInfo
	raw, err := os.ReadFile(f.infoPath()) //nolint:gosec // path comes from the local user's flags
	if err != nil {
		return info, err
	}
	err = json.Unmarshal(raw, &info)
	return info, err
}

// pidAlive probes pid with signal 0. EPERM still means the process exists.
func pidAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// childArgs rewrites the current invocation for the detached server
// process: --detach is dropped and the hidden --child marker added.
func childArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return append(out, "--child")
}
