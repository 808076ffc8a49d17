// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var (
	pollTimeout int
)

var pollCmd = &cobra.Command{
	Use:   "poll [MESSAGE...]",
	Short: "Poll the receiver for messages",
	Long: `Send UBX poll requests and wait for the receiver's responses.

A poll request is a frame with the message's class/id and an empty payload.
The receiver answers with the message itself, or with ACK-NAK when the
message cannot be polled. Messages are named as in the registry, e.g.
MON-VER or NAV-PVT. MON-VER is polled when no name is given.

Examples:
  # Receiver and firmware version
  sextant poll --port /dev/ttyACM0

  # RF status and current solution
  sextant poll --port /dev/ttyACM0 MON-RF NAV-PVT

Exit codes:
  0 - Every polled message was received
  1 - At least one message was not received (NAK or timeout)
  2 - Connection error`,
	RunE: runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
	pollCmd.Flags().IntVar(&pollTimeout, "timeout", 5, "Timeout in seconds to wait for responses")
}

func runPoll(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{ubx.TypeMonVer}
	}

	tables, err := newTables()
	if err != nil {
		return err
	}

	pending := make(map[ubx.MessageKey]string, len(args))
	requests := make([][]byte, 0, len(args))
	for _, name := range args {
		name = strings.ToUpper(name)
		key, ok := tables.MessageKey(name)
		if !ok {
			return fmt.Errorf("unknown message %q", name)
		}
		wire, err := ubx.EncodeFrame(key.Class, key.ID, nil)
		if err != nil {
			return err
		}
		pending[key] = name
		requests = append(requests, wire)
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sextant - Poll\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n\n", pollTimeout)

	for i, wire := range requests {
		fmt.Printf("Sending poll request for %s...\n", strings.ToUpper(args[i]))
		if _, err := conn.Write(wire); err != nil {
			fmt.Printf("SEND FAILED: %v\n", err)
			os.Exit(2)
		}
	}

	dispatcher := ubx.NewDispatcher(ubx.WithTables(tables))
	responses := make(chan *ubx.Frame, 16)
	errChan := make(chan error, 1)

	go func() {
		r := ubx.NewReader(conn)
		for {
			frame, err := r.ReadFrame()
			if err != nil {
				if isEndOfStream(err) {
					errChan <- err
					return
				}
				continue
			}
			responses <- frame
		}
	}()

	rejected := 0
	deadline := time.After(time.Duration(pollTimeout) * time.Second)
	for len(pending) > 0 {
		select {
		case frame := <-responses:
			key := frame.Key()

			if key == ubx.Key(ubx.ClassACK, 0x00) && len(frame.Payload) >= 2 {
				nakKey := ubx.Key(frame.Payload[0], frame.Payload[1])
				if name, ok := pending[nakKey]; ok {
					fmt.Printf("\nNAK: receiver rejected poll for %s\n", name)
					delete(pending, nakKey)
					rejected++
				}
				continue
			}

			name, ok := pending[key]
			if !ok {
				continue
			}
			delete(pending, key)

			msg, err := dispatcher.Dispatch(frame)
			switch {
			case err != nil:
				fmt.Printf("\n%s received but failed to decode: %v\n", name, err)
			case msg == nil:
				fmt.Printf("\n%s received (no decoder)\n", name)
				fmt.Print(ubx.FormatUnknown(ubx.Unknown{Frame: frame, Key: key, Name: name}))
			default:
				fmt.Printf("\n")
				fmt.Print(ubx.FormatMessage(frame, msg))
			}

		case err := <-errChan:
			fmt.Printf("READ FAILED: %v\n", err)
			os.Exit(2)

		case <-deadline:
			fmt.Printf("\nTIMEOUT: No response within %ds for:", pollTimeout)
			for _, name := range pending {
				fmt.Printf(" %s", name)
			}
			fmt.Printf("\n")
			os.Exit(1)
		}
	}

	if rejected > 0 {
		os.Exit(1)
	}
	return nil
}
