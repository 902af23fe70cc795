// Package commands implements the interactive facilityctl client.
package commands

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	booking "github.com/marmos91/facilityd/internal/protocol/booking"
	"github.com/marmos91/facilityd/pkg/client"
	"github.com/marmos91/facilityd/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile     string
	callTimeout time.Duration
	maxAttempts int
)

var rootCmd = &cobra.Command{
	Use:   "facilityctl <host> <port> <semantics>",
	Short: "Interactive client for the facility booking server",
	Long: `facilityctl is an interactive client for the facility booking server.
It connects to the given host and port over UDP and presents a menu of
booking operations: query availability, book, change, extend, cancel,
and monitor a facility for availability callbacks.

The semantics argument names the mode the target server runs in
(at-least-once or at-most-once). The client retransmits identically in
both modes; the argument is shown in the banner so experiment output
records which semantics were under test.

Examples:
  facilityctl localhost 2222 at-most-once

  # Shorter per-attempt timeout, more retransmissions
  facilityctl localhost 2222 at-least-once --timeout 2s --attempts 5`,
	Args:          cobra.ExactArgs(3),
	RunE:          runClient,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/facilityd/config.yaml)")
	rootCmd.Flags().DurationVar(&callTimeout, "timeout", 0, "per-attempt reply timeout (default from config)")
	rootCmd.Flags().IntVar(&maxAttempts, "attempts", 0, "total sends per request, the first included (default from config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

func runClient(cmd *cobra.Command, args []string) error {
	host := args[0]
	port, err := strconv.Atoi(args[1])
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q: must be an integer between 1 and 65535", args[1])
	}

	semantics, err := booking.ParseSemantics(args[2])
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	clientCfg := client.Config{
		Timeout:     cfg.Client.Timeout,
		MaxAttempts: cfg.Client.MaxAttempts,
	}
	if callTimeout > 0 {
		clientCfg.Timeout = callTimeout
	}
	if maxAttempts > 0 {
		clientCfg.MaxAttempts = maxAttempts
	}

	addr := net.JoinHostPort(host, args[1])
	c, err := client.Dial(addr, clientCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer func() { _ = c.Close() }()

	s := &session{
		client:    c,
		addr:      addr,
		semantics: semantics,
	}
	return s.run()
}
