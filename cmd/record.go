// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var (
	recordJSONL  string
	recordCBOR   string
	recordSQLite string
	recordNATS   string
	recordQuiet  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record decoded messages to files, SQLite or NATS",
	Long: `Decode the receiver stream and archive every decoded message.

Archives (any combination):
  --jsonl PATH   one JSON record per line
  --cbor PATH    CBOR sequence (RFC 8742) of records
  --sqlite PATH  messages and position fixes in a SQLite database
  --nats URL     publish JSON records on <subject>.<TYPE>

Archives may also be configured in the record section of --config.
Live connections are reopened automatically when they drop; a capture file
given with --file is recorded once.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().StringVar(&recordJSONL, "jsonl", "", "JSON lines output file")
	recordCmd.Flags().StringVar(&recordCBOR, "cbor", "", "CBOR sequence output file")
	recordCmd.Flags().StringVar(&recordSQLite, "sqlite", "", "SQLite database file")
	recordCmd.Flags().StringVar(&recordNATS, "nats", "", "NATS server URL")
	recordCmd.Flags().BoolVarP(&recordQuiet, "quiet", "q", false, "Do not print a line per message")
}

func applyRecordFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("jsonl") {
		cfg.Record.JSONL = recordJSONL
	}
	if flags.Changed("cbor") {
		cfg.Record.CBOR = recordCBOR
	}
	if flags.Changed("sqlite") {
		cfg.Record.SQLite = recordSQLite
	}
	if flags.Changed("nats") {
		cfg.Record.NATSURL = recordNATS
	}
}

func runRecord(cmd *cobra.Command, args []string) error {
	applyRecordFlags(cmd)

	sinks, err := openSinks(cfg.Record, log)
	if err != nil {
		return err
	}
	defer sinks.Close()
	if sinks.Len() == 0 {
		return fmt.Errorf("nothing to record: give --jsonl, --cbor, --sqlite or --nats")
	}

	stats := ubx.NewStatistics()
	pl, err := newPipeline(stats, sinks, log)
	if err != nil {
		return err
	}

	start := time.Now()
	err = streamWithReconnect(cmd.Context(), pl, func(ev frameEvent) {
		switch {
		case ev.frameErr != nil:
			log.WithError(ev.frameErr).Warn("frame dropped")
		case ev.decodeErr != nil:
			log.WithError(ev.decodeErr).Warn("decode failed")
		case ev.msg != nil && !recordQuiet:
			fmt.Print(ubx.FormatFrame(ev.frame))
		}
		for _, v := range ev.validation {
			log.WithField("anomaly", v.Type.String()).Debug(v.Message)
		}
	})

	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("recording stopped")
	fmt.Println()
	fmt.Print(stats.String())
	return err
}
