package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marmos91/facilityd/internal/logger"
	booking "github.com/marmos91/facilityd/internal/protocol/booking"
	"github.com/marmos91/facilityd/internal/telemetry"
	"github.com/marmos91/facilityd/pkg/api"
	"github.com/marmos91/facilityd/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve <port> <semantics> [request-loss] [reply-loss]",
	Short: "Start the facility booking server",
	Long: `Start the facility booking server on the given UDP port.

The semantics argument selects how retransmitted requests are handled:
  at-least-once   every received datagram is executed
  at-most-once    duplicates are answered from the reply history

The optional loss arguments are probabilities in [0, 1) that an incoming
request or an outgoing reply is silently discarded, for experimenting
with invocation semantics over an unreliable network. Both default to 0.

Examples:
  # Exactly-what-you-send semantics on port 2222
  facilityd serve 2222 at-most-once

  # Drop 30% of requests and 30% of replies
  facilityd serve 2222 at-least-once 0.3 0.3

  # With a custom config file
  facilityd serve 2222 at-most-once --config /etc/facilityd/config.yaml`,
	Args: cobra.RangeArgs(2, 4),
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	port, err := strconv.Atoi(args[0])
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %q: must be an integer between 1 and 65535", args[0])
	}

	semantics, err := booking.ParseSemantics(args[1])
	if err != nil {
		return err
	}

	var requestLoss, replyLoss float64
	if len(args) > 2 {
		if requestLoss, err = parseLoss(args[2]); err != nil {
			return fmt.Errorf("invalid request-loss: %w", err)
		}
	}
	if len(args) > 3 {
		if replyLoss, err = parseLoss(args[3]); err != nil {
			return fmt.Errorf("invalid reply-loss: %w", err)
		}
	}

	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "facilityd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	logger.Info("Configuration loaded", "source", configSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}

	srv := booking.NewServer(booking.ServerConfig{
		Port:        port,
		Semantics:   semantics,
		RequestLoss: requestLoss,
		ReplyLoss:   replyLoss,
		Facilities:  cfg.Server.Facilities,
		HistoryTTL:  cfg.Server.HistoryTTL,
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	var adminSrv *http.Server
	if cfg.Admin.Enabled {
		adminSrv = api.NewServer(fmt.Sprintf(":%d", cfg.Admin.Port), srv)
		go func() {
			logger.Info("Admin surface listening", "port", cfg.Admin.Port)
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Admin surface error", "error", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.",
		"port", port,
		"semantics", string(semantics),
		"request_loss", requestLoss,
		"reply_loss", replyLoss,
		"facilities", len(cfg.Server.Facilities))

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		srv.Stop()
		if err := <-serverDone; err != nil {
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			return err
		}
	}

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Admin surface shutdown error", "error", err)
		}
	}

	logger.Info("Server stopped")
	return nil
}

func parseLoss(s string) (float64, error) {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if p < 0 || p >= 1 {
		return 0, fmt.Errorf("probability %v is outside [0, 1)", p)
	}
	return p, nil
}

// configSource returns a description of where the config was loaded from.
func configSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
