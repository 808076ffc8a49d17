// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"

	"github.com/Thermoquad/sextant/internal/web"
	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live receiver state over HTTP and WebSocket",
	Long: `Decode the receiver stream and serve it over HTTP.

Endpoints:
  GET /api/status          statistics and the latest position solution
  GET /api/messages        latest record of every message type
  GET /api/messages/{type} latest record of one type, e.g. NAV-PVT
  GET /ws                  WebSocket feed of every decoded record (JSON)

The archive flags of the record command may be combined with serve.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "HTTP listen address (default :8080)")
	serveCmd.Flags().StringVar(&recordJSONL, "jsonl", "", "JSON lines output file")
	serveCmd.Flags().StringVar(&recordCBOR, "cbor", "", "CBOR sequence output file")
	serveCmd.Flags().StringVar(&recordSQLite, "sqlite", "", "SQLite database file")
	serveCmd.Flags().StringVar(&recordNATS, "nats", "", "NATS server URL")
}

func runServe(cmd *cobra.Command, args []string) error {
	applyRecordFlags(cmd)
	if serveListen != "" {
		cfg.Web.Listen = serveListen
	}

	sinks, err := openSinks(cfg.Record, log)
	if err != nil {
		return err
	}
	defer sinks.Close()

	feed := web.NewBroadcaster()
	sinks.Add(feed)

	stats := ubx.NewStatistics()
	pl, err := newPipeline(stats, sinks, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	srv := web.NewServer(stats, feed, log)
	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe(ctx, cfg.Web.Listen)
	}()
	log.WithField("listen", cfg.Web.Listen).Info("serving")

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- streamWithReconnect(ctx, pl, func(ev frameEvent) {
			if ev.frameErr != nil {
				log.WithError(ev.frameErr).Debug("frame dropped")
			}
		})
	}()

	select {
	case err := <-srvErr:
		cancel()
		<-streamErr
		return err
	case err := <-streamErr:
		// a replayed capture stays browsable until interrupted
		if err != nil {
			log.WithError(err).Warn("stream stopped")
		} else {
			log.Info("stream ended; still serving")
		}
		return <-srvErr
	}
}
