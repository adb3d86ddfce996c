package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydleither/spatial-egt/internal/config"
	"github.com/sydleither/spatial-egt/internal/platform/tui"
	"github.com/sydleither/spatial-egt/internal/registry"
)

var (
	flagSSHAddr       string
	flagHostKey       string
	flagIdleTimeout   int
	flagServeConfig   string
	flagServeTopology string
	flagServeTickRate int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the live viewer SSH server",
	Long: `Start an SSH server that shows the live viewer to every connection.

Each SSH connection simulates its own copy of the experiment with its own
seed, so viewers never share state.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.spatialegt/host_key

Examples:
  spatialegt serve                            # Listen on :23234, 2D default experiment
  spatialegt serve --ssh :2222 --dim 3D       # Listen on port 2222, 3D lattices
  spatialegt serve --config ./coexist.json    # Serve a specific experiment
  spatialegt serve --host-key ./my_host_key   # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServeConfig, "config", "", "Path to experiment parameters (JSON or YAML)")
	serveCmd.Flags().StringVar(&flagServeTopology, "dim", "2D", "Topology selector: WM, 2D or 3D")
	serveCmd.Flags().IntVar(&flagServeTickRate, "fps", 10, "Viewer ticks per second")
}

func runServe(_ *cobra.Command, _ []string) {
	if !registry.Exists(flagServeTopology) {
		fmt.Fprintf(os.Stderr, "Error: unknown dimension %q\n", flagServeTopology)
		os.Exit(1)
	}

	exp, err := config.Load(flagServeConfig, "", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Experiment:  exp,
		Topology:    flagServeTopology,
		TickRate:    flagServeTickRate,
	}

	server, err := tui.NewSSHServer(cfg, newLogger("spatialegt-ssh"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting spatialegt SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
