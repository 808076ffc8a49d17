// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"fmt"
	"strings"
)

// FormatFrame formats a frame header line
func FormatFrame(f *Frame) string {
	timestamp := f.Received.Format("15:04:05.000")
	return fmt.Sprintf("[%s] %s (0x%02X 0x%02X) len=%d\n", timestamp, f.Name(), f.Class, f.ID, len(f.Payload))
}

// FormatUnknown formats an unknown-frame notification
func FormatUnknown(u Unknown) string {
	result := FormatFrame(u.Frame)
	result += fmt.Sprintf("  Unsupported message type %s (key %s)\n", u.Name, u.Key)
	if n := len(u.Frame.Payload); n > 0 {
		show := u.Frame.Payload
		if n > 32 {
			show = show[:32]
		}
		result += fmt.Sprintf("  Payload: % X", show)
		if n > 32 {
			result += " ..."
		}
		result += "\n"
	}
	return result
}

// FormatMessage formats a decoded message into a human-readable string
func FormatMessage(f *Frame, m Message) string {
	result := ""
	if f != nil {
		result = FormatFrame(f)
	}
	if itow, ok := TimeOfWeek(m); ok {
		result += fmt.Sprintf("  iTOW: %d ms\n", itow)
	}
	return result + FormatData(m)
}

// FormatData formats the message-specific fields
func FormatData(m Message) string {
	switch msg := m.(type) {
	case *NavStatus:
		d := msg.Data
		return fmt.Sprintf("  Fix: %s, FixOK: %s, Diff: %s, PSM: %s, Spoof: %s, Carrier: %s\n"+
			"  TTFF: %d ms, Uptime: %s\n",
			d.GPSFix, yesNo(d.Flags.GPSFixOK), yesNo(d.Flags.DiffSoln), d.Flags.PSMState,
			d.Flags.SpoofDetState, d.Flags.CarrSoln, d.TTFF, formatDuration(uint64(d.MSSS)))

	case *NavPosLLH:
		d := msg.Data
		return fmt.Sprintf("  Position: %.7f, %.7f, Height: %.3f m (MSL %.3f m), Acc: %.3f/%.3f m\n",
			d.Lat, d.Lon, mm(int64(d.Height)), mm(int64(d.HMSL)), mm(int64(d.HAcc)), mm(int64(d.VAcc)))

	case *NavVelNED:
		d := msg.Data
		return fmt.Sprintf("  Velocity NED: %d/%d/%d cm/s, Ground: %d cm/s, Heading: %.2f°\n",
			d.VelN, d.VelE, d.VelD, d.GSpeed, d.Heading)

	case *NavPVT:
		d := msg.Data
		result := fmt.Sprintf("  UTC: %04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
		if !d.Valid.ValidDate || !d.Valid.ValidTime {
			result += " (invalid)"
		}
		result += fmt.Sprintf(", Fix: %s, SVs: %d, Carrier: %s\n", d.FixType, d.NumSV, d.Flags.CarrSoln)
		result += fmt.Sprintf("  Position: %.7f, %.7f, Height: %.3f m, Acc: %.3f/%.3f m, pDOP: %.2f\n",
			d.Lat, d.Lon, mm(int64(d.HMSL)), mm(int64(d.HAcc)), mm(int64(d.VAcc)), d.PDOP)
		result += fmt.Sprintf("  Speed: %d mm/s, Heading: %.2f°\n", d.GSpeed, d.HeadMot)
		return result

	case *NavHPPosLLH:
		d := msg.Data
		result := fmt.Sprintf("  Position: %.9f, %.9f, Height: %.4f m (MSL %.4f m), Acc: %.4f/%.4f m",
			d.Lat.Degrees(), d.Lon.Degrees(), d.Height.Millimeters()/1000, d.HMSL.Millimeters()/1000,
			d.HAcc.Millimeters()/1000, d.VAcc.Millimeters()/1000)
		if d.Flags.InvalidLlh {
			result += " (invalid)"
		}
		return result + "\n"

	case *NavRelPosNED:
		d := msg.Data
		return fmt.Sprintf("  Ref: %d, NED: %.1f/%.1f/%.1f mm, Length: %.1f mm, Heading: %.5f°, Carrier: %s, Valid: %s\n",
			d.RefStationID, d.RelPosN.Millimeters(), d.RelPosE.Millimeters(), d.RelPosD.Millimeters(),
			d.RelPosLength.Millimeters(), d.RelPosHeading, d.Flags.CarrSoln, yesNo(d.Flags.RelPosValid))

	case *NavSat:
		d := msg.Data
		result := fmt.Sprintf("  Satellites: %d (used %d)\n", d.NumSvs, d.UsedCount())
		for _, sv := range d.Sats {
			result += fmt.Sprintf("    %-8s %3d  C/N0=%2d  el=%3d az=%3d  %s%s\n",
				gnssLabel(sv.GNSS), sv.SvID, sv.Cno, sv.Elev, sv.Azim, sv.Flags.QualityInd, usedMark(sv.Flags.SvUsed))
		}
		return result

	case *NavSig:
		d := msg.Data
		result := fmt.Sprintf("  Signals: %d (used %d)\n", d.NumSigs, d.UsedCount())
		for _, sig := range d.Sigs {
			name := sig.Sig.Name
			if name == "" {
				name = fmt.Sprintf("sig %d", sig.Sig.ID)
			}
			result += fmt.Sprintf("    %-8s %3d  %-16s C/N0=%2d  %s%s\n",
				gnssLabel(sig.GNSS), sig.SvID, name, sig.Cno, sig.QualityInd, usedMark(sig.Flags.PrUsed))
		}
		return result

	case *NavEOE:
		return "  End of epoch\n"

	case *MonVer:
		d := msg.Data
		result := fmt.Sprintf("  Software: %s, Hardware: %s\n", d.SwVersion, d.HwVersion)
		if len(d.Extensions) > 0 {
			result += fmt.Sprintf("  Extensions: %s\n", strings.Join(d.Extensions, ", "))
		}
		return result

	case *MonRF:
		d := msg.Data
		result := fmt.Sprintf("  Version: %d, Blocks: %d\n", d.Version, d.NBlocks)
		for _, b := range d.Blocks {
			result += fmt.Sprintf("    Block %d: Jamming=%s (%d), Antenna=%s/%s, Noise=%d, AGC=%d\n",
				b.BlockID, b.JammingState, b.JamInd, b.AntStatus, b.AntPower, b.NoisePerMS, b.AgcCnt)
		}
		return result
	}

	if m == nil {
		return ""
	}
	return fmt.Sprintf("  %s (no formatter)\n", m.MessageType())
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func usedMark(b bool) string {
	if b {
		return " [used]"
	}
	return ""
}

func gnssLabel(c Constellation) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("gnss%d", c.ID)
}

// mm converts millimeters to meters
func mm(v int64) float64 {
	return float64(v) / 1000
}

// formatDuration formats milliseconds as a human-readable duration
func formatDuration(ms uint64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours%24, minutes%60)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, seconds%60)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%d.%03ds", seconds, ms%1000)
}
