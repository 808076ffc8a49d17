// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze corrupt frames and anomalous messages",
	Long: `Track frame errors, short payloads and anomalous values with statistics.

This command validates each message and detects:
  - Checksum failures and oversize frames
  - Payloads too short for their message layout, and length mismatches
  - Out-of-range coordinates and fix flags that contradict the fix type
  - Used satellites or signals without a usable quality indicator
  - RF jamming warnings and unknown MON-RF versions
  - Statistics and trends (frame rate, error rate, per-type counts)

By default, only errors are displayed. Use --show-all to display valid messages too.

Messages are validated in real-time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all messages (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	if useTUI {
		return runTUIMode(cmd.Context(), conn, connInfo)
	}
	return runTextMode(cmd.Context(), conn, connInfo)
}

// printFrameError prints a framing error in highlighted format
func printFrameError(err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;31mFRAME ERROR:\033[0m %v\n", timestamp, err)
	fmt.Printf("  >>> FRAME DROPPED <<<\n\n")
}

// printValidationErrors prints validation errors for a frame
func printValidationErrors(f *ubx.Frame, errors []ubx.ValidationError) {
	timestamp := f.Received.Format("15:04:05.000")

	fmt.Printf("[%s] \033[1;33mVALIDATION ERROR:\033[0m %s (0x%02X 0x%02X)\n", timestamp, f.Name(), f.Class, f.ID)
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, err := range errors {
		switch err.Type {
		case ubx.AnomalyShortPayload, ubx.AnomalyLengthMismatch:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if length, ok := err.Details["length"].(int); ok {
				if expected, ok := err.Details["expected"].(int); ok {
					fmt.Printf("    Length: received=%d, expected=%d\n", length, expected)
				}
			}

		case ubx.AnomalyInvalidCoordinate:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
			if lat, ok := err.Details["lat"].(float64); ok {
				if lon, ok := err.Details["lon"].(float64); ok {
					fmt.Printf("    lat=%.7f, lon=%.7f\n", lat, lon)
				}
			}

		case ubx.AnomalyJamming:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
			if jamInd, ok := err.Details["jamInd"].(uint8); ok {
				fmt.Printf("    jamInd=%d (0-255)\n", jamInd)
			}

		default:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		}
	}

	fmt.Printf("  >>> MESSAGE FLAGGED <<<\n\n")
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(ctx context.Context, conn Connection, connInfo string) error {
	stats := ubx.NewStatistics()
	m := initialModel(connInfo, statsInterval, showAll, stats)
	p := tea.NewProgram(m)

	pl, err := newPipeline(stats, nil, log)
	if err != nil {
		return err
	}
	pl.onSync = func(ev syncEvent) {
		p.Send(syncMsg{invalidBytes: ev.skipped})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		err := pl.run(ctx, conn, func(ev frameEvent) {
			p.Send(frameMsg(ev))
		})
		p.Send(streamEndMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(ctx context.Context, conn Connection, connInfo string) error {
	fmt.Printf("Sextant - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All messages\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := ubx.NewStatistics()
	pl, err := newPipeline(stats, nil, log)
	if err != nil {
		return err
	}
	pl.onSync = func(ev syncEvent) {
		if ev.skipped > 0 {
			fmt.Printf("[SYNC] Synchronized after skipping %d bytes\n\n", ev.skipped)
		} else {
			fmt.Printf("[SYNC] Synchronized\n\n")
		}
	}

	events := make(chan frameEvent, 64)
	done := make(chan error, 1)
	go func() {
		done <- pl.run(ctx, conn, func(ev frameEvent) {
			events <- ev
		})
	}()

	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case ev := <-events:
			printEvent(ev)

		case err := <-done:
			// drain what the reader queued before it stopped
			for len(events) > 0 {
				printEvent(<-events)
			}
			fmt.Println()
			fmt.Print(stats.String())
			return err

		case <-statsTicker.C:
			fmt.Println()
			fmt.Print(stats.String())
			fmt.Println()
		}
	}
}

func printEvent(ev frameEvent) {
	switch {
	case ev.frameErr != nil:
		printFrameError(ev.frameErr)
	case len(ev.validation) > 0:
		printValidationErrors(ev.frame, ev.validation)
	case ev.unknown != nil:
		if showAll {
			fmt.Print(ubx.FormatUnknown(*ev.unknown))
		}
	case showAll && ev.msg != nil:
		fmt.Print(ubx.FormatMessage(ev.frame, ev.msg))
	}
}
