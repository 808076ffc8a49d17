// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/spf13/cobra"
)

var (
	decodeJSON    bool
	decodeMessage string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [HEX...]",
	Short: "Decode UBX frames given as hex",
	Long: `Decode one or more UBX frames given as hex strings.

Each argument is a complete frame including sync chars and checksum; spaces
and the separators ':', '-', '_', ',' and '|' are ignored. With no arguments,
frames are read from stdin, one per line.

With --message NAME, each argument is a bare payload decoded as that message
type instead of a framed message.

Examples:
  sextant decode "B5 62 01 61 04 00 E8 03 00 00 51 70"
  sextant decode --message NAV-EOE e8030000
  sextant decode --json < frames.txt`,
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().BoolVar(&decodeJSON, "json", false, "Print JSON records instead of text")
	decodeCmd.Flags().StringVarP(&decodeMessage, "message", "m", "", "Treat input as a bare payload of this message type")
}

func runDecode(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
				args = append(args, line)
			}
		}
	}

	d, err := newDispatcher()
	if err != nil {
		return err
	}

	failed := 0
	for _, arg := range args {
		if err := decodeOne(cmd.OutOrStdout(), d, arg); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to decode", failed, len(args))
	}
	return nil
}

func decodeOne(w io.Writer, d *ubx.Dispatcher, raw string) error {
	data, err := ubx.DecodeHex(raw)
	if err != nil {
		return err
	}

	var frame *ubx.Frame
	if decodeMessage != "" {
		name := strings.ToUpper(decodeMessage)
		key, ok := d.Context().Tables.MessageKey(name)
		if !ok {
			return fmt.Errorf("unknown message %q", name)
		}
		frame = ubx.NewFrame(key.Class, key.ID, data)
	} else {
		frame, err = ubx.ParseFrame(data)
		if err != nil {
			return err
		}
	}

	msg, err := d.Dispatch(frame)
	if err != nil {
		return err
	}
	if msg == nil {
		name := frame.Name()
		if n, ok := d.Context().Tables.MessageName(frame.Key()); ok {
			name = n
		}
		_, err := fmt.Fprint(w, ubx.FormatUnknown(ubx.Unknown{Frame: frame, Key: frame.Key(), Name: name}))
		return err
	}

	if decodeJSON {
		return json.NewEncoder(w).Encode(ubx.NewRecord(frame, msg))
	}

	out := ubx.FormatMessage(frame, msg)
	for _, v := range ubx.ValidateMessage(frame, msg) {
		out += fmt.Sprintf("  ! %s: %s\n", v.Type, v.Message)
	}
	_, err = fmt.Fprint(w, out)
	return err
}
