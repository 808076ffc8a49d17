// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"strings"
	"testing"
)

func TestFormatMessage_AllTypes(t *testing.T) {
	frames := []*Frame{
		NewFrame(ClassNAV, IDNavStatus, newPayload(16)),
		NewFrame(ClassNAV, IDNavPosLLH, newPayload(28)),
		NewFrame(ClassNAV, IDNavVelNED, newPayload(36)),
		NewFrame(ClassNAV, IDNavSat, newPayload(20).u1(5, 1)),
		NewFrame(ClassNAV, IDNavSig, newPayload(24).u1(5, 1)),
		NewFrame(ClassNAV, IDNavPVT, newPayload(92)),
		NewFrame(ClassNAV, IDNavHPPosLLH, newPayload(36)),
		NewFrame(ClassNAV, IDNavRelPosNED, newPayload(64)),
		NewFrame(ClassNAV, IDNavEOE, newPayload(4)),
		NewFrame(ClassMON, IDMonVer, newPayload(70).str(40, "PROTVER=18.00")),
		NewFrame(ClassMON, IDMonRF, newPayload(28).u1(1, 1)),
	}

	for _, f := range frames {
		t.Run(f.Name(), func(t *testing.T) {
			out := FormatMessage(f, decodeFrame(t, f))
			if !strings.Contains(out, f.Name()) {
				t.Errorf("output missing type name %s:\n%s", f.Name(), out)
			}
			if strings.Contains(out, "no formatter") {
				t.Errorf("no formatter for %s", f.Name())
			}
			if !strings.HasSuffix(out, "\n") {
				t.Errorf("output should end with newline: %q", out)
			}
		})
	}
}

func TestFormatMessage_Details(t *testing.T) {
	f := NewFrame(ClassNAV, IDNavStatus, newPayload(16).u4(0, 1234).u1(4, 3).u4(12, 90_061_000))
	out := FormatMessage(f, decodeFrame(t, f))

	for _, want := range []string{"iTOW: 1234 ms", "Fix: 3d-fix", "Carrier: none", "Uptime: 1d 1h 1m"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}

	f = NewFrame(ClassMON, IDMonRF, newPayload(28).u1(1, 1).u1(7, 3))
	out = FormatMessage(f, decodeFrame(t, f))
	if !strings.Contains(out, "unspecified (0b00000011)") {
		t.Errorf("expected unmapped antPower in:\n%s", out)
	}
}

func TestFormatUnknown(t *testing.T) {
	f := NewFrame(ClassRXM, 0x15, make([]byte, 40))
	out := FormatUnknown(Unknown{Frame: f, Key: f.Key(), Name: "RXM-RAWX"})

	if !strings.Contains(out, "RXM-RAWX") || !strings.Contains(out, "key 2_21") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("long payload should be truncated:\n%s", out)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{1500, "1.500s"},
		{61_000, "1m 1s"},
		{3_661_000, "1h 1m 1s"},
		{90_061_000, "1d 1h 1m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.ms); got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
