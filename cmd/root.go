// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Capture replay
	inputFile string

	cfg config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "sextant",
	Short: "u-blox UBX Protocol Analyzer",
	Long: `Sextant - A CLI tool for monitoring and decoding u-blox UBX receiver output.

Provides commands for raw frame logging, error detection, recording decoded
messages and serving live receiver state over HTTP.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  Capture:   --file capture.ubx

Settings may also be given in a YAML file with --config; flags override the
file. For WebSocket authentication, the password is read from the
SEXTANT_PASSWORD environment variable, or prompted interactively if not set.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", config.DefaultBaud, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "Replay a recorded UBX capture file")
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Connection.Port = portName
	}
	if flags.Changed("baud") {
		cfg.Connection.Baud = baudRate
	}
	if flags.Changed("url") {
		cfg.Connection.URL = wsURL
	}
	if flags.Changed("username") {
		cfg.Connection.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		cfg.Connection.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("file") {
		cfg.Connection.File = inputFile
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	log = cfg.Logger()
	log.SetOutput(os.Stderr)
	return nil
}

// newTables builds the identifier tables with any configured extra names
func newTables() (*ubx.Tables, error) {
	extra := make(map[string]ubx.MessageKey, len(cfg.Tables))
	for name, key := range cfg.MessageKeys() {
		extra[name] = ubx.Key(key[0], key[1])
	}
	return ubx.NewTables(extra)
}

// newDispatcher creates a dispatcher over the configured tables
func newDispatcher(opts ...ubx.Option) (*ubx.Dispatcher, error) {
	tables, err := newTables()
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	return ubx.NewDispatcher(append([]ubx.Option{ubx.WithTables(tables)}, opts...)...), nil
}

// Execute runs the root command. Ctrl+C cancels the command context so
// streams and servers shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
