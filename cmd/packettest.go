// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test connection by waiting for a valid UBX frame",
	Long: `Wait for a valid UBX frame on the connection until timeout.

This command connects to a serial port, WebSocket or capture file and waits
for any frame passing the Fletcher checksum. Bytes before the first sync pair
(NMEA sentences, line noise) are skipped and counted.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking a receiver's port configuration and baud rate.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Sextant - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)
	fmt.Printf("Waiting for valid UBX frame...\n\n")

	frameChan := make(chan *ubx.Frame, 1)
	errChan := make(chan error, 1)

	go func() {
		r := ubx.NewReader(conn)
		badFrames := 0
		for {
			frame, err := r.ReadFrame()
			if err != nil {
				var fe *ubx.FrameError
				if errors.As(err, &fe) {
					badFrames++
					continue
				}
				errChan <- err
				return
			}
			if r.Skipped > 0 || badFrames > 0 {
				fmt.Printf("(skipped %d bytes and %d corrupt frames before sync)\n", r.Skipped, badFrames)
			}
			frameChan <- frame
			return
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Type: %s (0x%02X 0x%02X)\n", frame.Name(), frame.Class, frame.ID)
		fmt.Printf("  Length: %d bytes\n", frame.Length())
		if wire, err := frame.Encode(); err == nil {
			fmt.Printf("  Checksum: 0x%02X 0x%02X\n", wire[len(wire)-2], wire[len(wire)-1])
		}
		os.Exit(0)

	case err := <-errChan:
		if isEndOfStream(err) {
			fmt.Fprintf(os.Stderr, "END OF STREAM: No valid frame found\n")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(packetTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", packetTestTimeout)
		os.Exit(1)
	}

	return nil
}
