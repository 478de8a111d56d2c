package cmd

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gridplan/gridplan/internal/cli"
	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/daemon"
	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/levels"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr    string
	flagServeDetach  bool
	flagServePIDFile string
	flagServeLogFile string
	flagServeChild   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host a game over HTTP, SSE and WebSocket",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server process and game status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running server",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(config.DataDir(), "gridplan-serve.pid")
	defaultLog := filepath.Join(config.DataDir(), "gridplan-serve.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")
	serveCmd.PersistentFlags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")

	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the server as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	files := serverFiles{pidPath: flagServePIDFile}
	switch {
	case flagServeDetach && flagServeChild:
		return errors.New("--detach and --child are exclusive")
	case flagServeDetach:
		return spawnServer(files)
	default:
		return serveForeground(files)
	}
}

// spawnServer re-executes the binary as a background server whose output
// goes to the log file.
func spawnServer(files serverFiles) error {
	if err := files.checkFree(); err != nil {
		return err
	}
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	//nolint:gosec // log path comes from the local user's flags
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening server log: %w", err)
	}
	defer logf.Close()

	child := exec.Command(exe, childArgs(os.Args[1:])...) //nolint:gosec // re-runs our own invocation
	child.Stdout, child.Stderr = logf, logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	fmt.Printf("  Server started in the background (pid %d)\n", child.Process.Pid)
	fmt.Printf("  Log:      %s\n", flagServeLogFile)
	fmt.Printf("  PID file: %s\n", files.pidPath)
	return nil
}

func serveForeground(files serverFiles) error {
	cfg := loadConfig()
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(cfg)
	if err != nil {
		return err
	}

	pid := os.Getpid()
	if err := files.claim(pid); err != nil {
		return err
	}
	defer files.release()

	addr := cmp.Or(flagServeAddr, cfg.Server.Addr)
	_ = files.writeInfo(serverInfo{PID: pid, Addr: addr, StartedAt: time.Now(), Policy: policy.Name})

	opts := game.Options{Catalog: catalog, Policy: policy, Budget: cfg.Ledger.Budget}
	st, err := openStore()
	if err != nil {
		progressf("  Results unavailable, progress will not be saved: %v\n", err)
	} else {
		defer st.Close()
		opts.Recorder = st
		opts.History = st
	}
	g := game.New(opts, levels.NewProgress())
	if player := playerName(cfg); player != "" {
		if err := g.Begin(player); err != nil {
			return err
		}
	}

	svc := daemon.New(daemon.Config{
		Addr:         addr,
		Tick:         time.Duration(cfg.Server.TickSeconds) * time.Second,
		RateLimit:    cfg.Server.RateLimit,
		RateBurst:    cfg.Server.RateBurst,
		EventsBuffer: cfg.Server.EventsBuffer,
	}, g)

	fmt.Printf("  gridplan listening on http://%s\n", addr)
	fmt.Printf("  Policy: %s, %d levels\n", policy.Name, len(catalog.Levels()))
	fmt.Printf("  Stop with: gridplan serve stop --pid-file %s\n", files.pidPath)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	files := serverFiles{pidPath: flagServePIDFile}
	pid, err := files.pid()
	if err != nil {
		fmt.Println("  Server: not running")
		return nil
	}
	if !pidAlive(pid) {
		fmt.Printf("  Server: not running (stale pid %d)\n", pid)
		return nil
	}

	addr := flagServeAddr
	if addr == "" {
		if info, err := files.info(); err == nil {
			addr = info.Addr
		}
	}
	addr = cmp.Or(addr, loadConfig().Server.Addr)

	fmt.Printf("  Server:  pid %d, http://%s\n", pid, addr)

	state, err := fetchState(addr)
	if err != nil {
		fmt.Printf("  Game:    %v\n", err)
		return nil
	}
	fmt.Printf("  Player:  %s\n", cmp.Or(state.Player, "(none)"))
	fmt.Printf("  Screen:  %s\n", state.Screen)
	fmt.Printf("  Policy:  %s\n", state.Policy)
	fmt.Printf("  Unlocked levels: %v\n", state.Unlocked)
	if state.Level > 0 {
		fmt.Printf("  Level %d at %s\n", state.Level, state.Clock)
	}
	if state.Snapshot != nil {
		tot := state.Snapshot.Totals
		fmt.Printf("  Capacity %s, emissions %s, spend %s\n",
			cli.FormatFixed(tot.Capacity, 2), cli.FormatFixed(tot.EmissionsAdjusted, 2), cli.FormatMoney(tot.Spend))
	}
	return nil
}

func fetchState(addr string) (daemon.State, error) {
	var state daemon.State
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/state") //nolint:noctx // one-shot probe
	if err != nil {
		return state, fmt.Errorf("unreachable (%w)", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return state, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return state, fmt.Errorf("bad state response: %w", err)
	}
	return state, nil
}

func runServeStop(_ *cobra.Command, _ []string) error {
	files := serverFiles{pidPath: flagServePIDFile}
	pid, err := files.pid()
	if err != nil {
		return errors.New("server is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding pid %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping pid %d: %w", pid, err)
	}

	ticker := time.NewTicker(150 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(8 * time.Second)
	for {
		select {
		case <-ticker.C:
			if !pidAlive(pid) {
				files.release()
				fmt.Printf("  Stopped server (pid %d)\n", pid)
				return nil
			}
		case <-timeout:
			return fmt.Errorf("server (pid %d) still running after 8s", pid)
		}
	}
}
