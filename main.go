// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Sextant - u-blox UBX Protocol Analyzer
//
// A CLI tool for monitoring and decoding u-blox UBX receiver output
// in human-readable format.

package main

import (
	"os"

	"github.com/Thermoquad/sextant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
