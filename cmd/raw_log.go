// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var (
	rawLogJSON    bool
	rawLogUnknown bool
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display decoded UBX messages in human-readable format",
	Long: `Continuously decode and display UBX messages as they arrive.

Each message is shown with its receive time, registry name, class/id bytes,
payload length and decoded fields. Frames without a decoder are shown as a
short hex dump when --unknown is set.

Use --json to print one JSON record per line instead.

Supports serial, WebSocket and capture file input.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogJSON, "json", false, "Print JSON records instead of text")
	rawLogCmd.Flags().BoolVar(&rawLogUnknown, "unknown", false, "Show frames without a decoder")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if !rawLogJSON {
		fmt.Printf("Sextant - Raw Message Log\n")
		fmt.Printf("Connection: %s\n", connInfo)
		fmt.Printf("Press Ctrl+C to exit\n\n")
	}

	p, err := newPipeline(nil, nil, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	return p.run(cmd.Context(), conn, func(ev frameEvent) {
		switch {
		case ev.frameErr != nil:
			fmt.Printf("[ERROR] %v\n", ev.frameErr)
		case ev.decodeErr != nil:
			fmt.Printf("[ERROR] %v\n", ev.decodeErr)
		case ev.unknown != nil:
			if rawLogUnknown && !rawLogJSON {
				fmt.Print(ubx.FormatUnknown(*ev.unknown))
			}
		case rawLogJSON:
			if err := enc.Encode(ubx.NewRecord(ev.frame, ev.msg)); err != nil {
				log.WithError(err).Warn("encode failed")
			}
		default:
			fmt.Print(ubx.FormatMessage(ev.frame, ev.msg))
		}
	})
}
