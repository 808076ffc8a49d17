// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for warnings
}

// TUI model
type model struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         *ubx.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	invalidBytes  int
	width         int
	height        int
	quitting      bool
	streamEnded   bool

	// Latest receiver state
	pvt     *ubx.NavPVTData
	status  *ubx.NavStatusData
	rf      []ubx.RFBlock
	version string
	sats    table.Model
	satsIn  int
	satsUse int
}

// Messages
type tickMsg time.Time
type frameMsg frameEvent
type syncMsg struct {
	invalidBytes int
}
type streamEndMsg struct {
	err error
}

// formatUptime formats milliseconds as "2 days, 3 hours and 4 minutes"
func formatUptime(ms uint64) string {
	units := []struct {
		name string
		ms   uint64
	}{
		{"day", 24 * 60 * 60 * 1000},
		{"hour", 60 * 60 * 1000},
		{"minute", 60 * 1000},
		{"second", 1000},
	}

	parts := []string{}
	for _, u := range units {
		n := ms / u.ms
		ms %= u.ms
		if n == 0 {
			continue
		}
		if n == 1 {
			parts = append(parts, "1 "+u.name)
		} else {
			parts = append(parts, fmt.Sprintf("%d %ss", n, u.name))
		}
	}

	switch len(parts) {
	case 0:
		return "0 seconds"
	case 1:
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

var satColumns = []table.Column{
	{Title: "GNSS", Width: 8},
	{Title: "SV", Width: 4},
	{Title: "C/N0", Width: 5},
	{Title: "Elev", Width: 5},
	{Title: "Azim", Width: 5},
	{Title: "Quality", Width: 22},
	{Title: "Used", Width: 4},
}

func initialModel(connInfo string, statsInterval int, showAll bool, stats *ubx.Statistics) model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = lipgloss.NewStyle()

	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         stats,
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		sats: table.New(
			table.WithColumns(satColumns),
			table.WithHeight(8),
			table.WithFocused(false),
			table.WithStyles(styles),
		),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.stats.CalculateRates()
		return m, tickCmd()

	case syncMsg:
		m.synchronized = true
		m.invalidBytes = msg.invalidBytes
		if msg.invalidBytes > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after skipping %d bytes", msg.invalidBytes), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case streamEndMsg:
		m.streamEnded = true
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Stream ended: %v", msg.err), true)
		} else {
			m.addLogEntry("Stream ended", false)
		}

	case frameMsg:
		m.handleFrame(frameEvent(msg))
	}

	return m, nil
}

func (m *model) handleFrame(ev frameEvent) {
	switch {
	case ev.frameErr != nil:
		m.addLogEntry(fmt.Sprintf("FRAME ERROR: %v", ev.frameErr), true)
		return
	case ev.unknown != nil:
		if m.showAll {
			m.addLogEntry(fmt.Sprintf("%s (no decoder)", ev.unknown.Name), false)
		}
		return
	}

	for _, v := range ev.validation {
		m.addLogEntry(v.Message, true)
	}
	if ev.msg == nil {
		return
	}
	if len(ev.validation) == 0 && m.showAll {
		m.addLogEntry(fmt.Sprintf("%s (valid)", ev.msg.MessageType()), false)
	}

	m.trackState(ev.msg)
}

// trackState keeps the latest receiver state for display
func (m *model) trackState(msg ubx.Message) {
	switch msg := msg.(type) {
	case *ubx.NavPVT:
		d := msg.Data
		m.pvt = &d
	case *ubx.NavStatus:
		d := msg.Data
		m.status = &d
	case *ubx.MonRF:
		m.rf = msg.Data.Blocks
	case *ubx.MonVer:
		m.version = msg.Data.SwVersion
		if fw, ok := msg.Data.Extension("FWVER"); ok {
			m.version = fw
		}
	case *ubx.NavSat:
		sats := append([]ubx.SatelliteInfo(nil), msg.Data.Sats...)
		sort.SliceStable(sats, func(i, j int) bool { return sats[i].Cno > sats[j].Cno })
		rows := make([]table.Row, 0, len(sats))
		for _, sv := range sats {
			gnss := sv.GNSS.Name
			if gnss == "" {
				gnss = fmt.Sprintf("gnss %d", sv.GNSS.ID)
			}
			used := ""
			if sv.Flags.SvUsed {
				used = "✓"
			}
			rows = append(rows, table.Row{
				gnss,
				fmt.Sprintf("%d", sv.SvID),
				fmt.Sprintf("%d", sv.Cno),
				fmt.Sprintf("%d", sv.Elev),
				fmt.Sprintf("%d", sv.Azim),
				sv.Flags.QualityInd.String(),
				used,
			})
		}
		m.sats.SetRows(rows)
		m.satsIn = len(sats)
		m.satsUse = msg.Data.UsedCount()
	}
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	mode := "Errors only"
	if m.showAll {
		mode = "All messages"
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("SEXTANT - ERROR DETECTION"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | Press 'q' to quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	switch {
	case m.streamEnded:
		s.WriteString(warningStyle.Render("■ Stream ended"))
	case !m.synchronized:
		s.WriteString(warningStyle.Render("⏳ Waiting for synchronization..."))
	default:
		s.WriteString(valueStyle.Render("✓ Synchronized"))
		if m.invalidBytes > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (skipped %d bytes)", m.invalidBytes)))
		}
	}
	s.WriteString("\n\n")

	// Statistics
	snap := m.stats.Snapshot()
	totalErrors := snap.ChecksumErrors + snap.FramingErrors + snap.DecodeErrors + snap.Anomalous
	var validPercent, errorPercent float64
	if snap.TotalFrames > 0 {
		validPercent = float64(snap.ValidFrames) * 100.0 / float64(snap.TotalFrames)
		errorPercent = float64(totalErrors) * 100.0 / float64(snap.TotalFrames)
	}

	var stats strings.Builder
	stats.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("Total:"), valueStyle.Render(fmt.Sprintf("%d", snap.TotalFrames)),
		labelStyle.Render("Valid:"), valueStyle.Render(fmt.Sprintf("%d (%.1f%%)", snap.ValidFrames, validPercent)),
		labelStyle.Render("Unknown:"), headerStyle.Render(fmt.Sprintf("%d", snap.UnknownFrames)),
		labelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", totalErrors, errorPercent)),
	))

	if snap.ChecksumErrors > 0 || snap.FramingErrors > 0 || snap.DecodeErrors > 0 {
		stats.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			labelStyle.Render("Checksum:"), errorStyle.Render(fmt.Sprintf("%d", snap.ChecksumErrors)),
			labelStyle.Render("Framing:"), errorStyle.Render(fmt.Sprintf("%d", snap.FramingErrors)),
			labelStyle.Render("Decode:"), errorStyle.Render(fmt.Sprintf("%d", snap.DecodeErrors)),
		))
	}

	if len(snap.Anomalies) > 0 {
		names := make([]string, 0, len(snap.Anomalies))
		for name := range snap.Anomalies {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %d", headerStyle.Render(name), snap.Anomalies[name]))
		}
		stats.WriteString(fmt.Sprintf("%s %s (%s)\n",
			labelStyle.Render("Anomalous:"), warningStyle.Render(fmt.Sprintf("%d", snap.Anomalous)),
			strings.Join(parts, ", "),
		))
	}

	errorRate := valueStyle.Render(fmt.Sprintf("%.1f err/s", snap.ErrorRate))
	if snap.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", snap.ErrorRate))
	}
	stats.WriteString(fmt.Sprintf("%s %s   %s %s",
		labelStyle.Render("Frame Rate:"), valueStyle.Render(fmt.Sprintf("%.1f frames/s", snap.FrameRate)),
		labelStyle.Render("Error Rate:"), errorRate,
	))

	s.WriteString(boxStyle.Render(stats.String()))
	s.WriteString("\n\n")

	// Receiver section (only shown once something was decoded)
	if m.pvt != nil || m.status != nil || len(m.rf) > 0 || m.version != "" {
		s.WriteString(labelStyle.Render("Receiver:"))
		s.WriteString("\n")

		var rx strings.Builder
		if m.version != "" {
			rx.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Firmware:"), valueStyle.Render(m.version)))
		}
		if m.pvt != nil {
			fix := errorStyle.Render(m.pvt.FixType.String())
			if m.pvt.HasFix() {
				fix = valueStyle.Render(m.pvt.FixType.String())
			}
			rx.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
				labelStyle.Render("Fix:"), fix,
				labelStyle.Render("Carrier:"), valueStyle.Render(m.pvt.Flags.CarrSoln.String()),
				labelStyle.Render("SVs:"), valueStyle.Render(fmt.Sprintf("%d", m.pvt.NumSV)),
			))
			rx.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				labelStyle.Render("Position:"), valueStyle.Render(fmt.Sprintf("%.7f, %.7f", m.pvt.Lat, m.pvt.Lon)),
				labelStyle.Render("hAcc:"), valueStyle.Render(fmt.Sprintf("%.3f m", float64(m.pvt.HAcc)/1000)),
			))
			if t, ok := m.pvt.UTC(); ok {
				rx.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("UTC:"),
					valueStyle.Render(t.Format("2006-01-02 15:04:05.000"))))
			}
		}
		if m.status != nil {
			rx.WriteString(fmt.Sprintf("%s %s   %s %s\n",
				labelStyle.Render("Uptime:"), valueStyle.Render(formatUptime(uint64(m.status.MSSS))),
				labelStyle.Render("TTFF:"), valueStyle.Render(fmt.Sprintf("%.1f s", float64(m.status.TTFF)/1000)),
			))
		}
		for _, b := range m.rf {
			jam := valueStyle.Render(b.JammingState.String())
			if b.JammingState.Value >= 2 {
				jam = errorStyle.Render(b.JammingState.String())
			}
			rx.WriteString(fmt.Sprintf("%s jamming %s, antenna %s/%s, jamInd %d\n",
				labelStyle.Render(fmt.Sprintf("RF %d:", b.BlockID)),
				jam, b.AntStatus, b.AntPower, b.JamInd,
			))
		}

		s.WriteString(boxStyle.Render(strings.TrimRight(rx.String(), "\n")))
		s.WriteString("\n\n")
	}

	if m.satsIn > 0 {
		s.WriteString(labelStyle.Render(fmt.Sprintf("Satellites: %d tracked, %d used", m.satsIn, m.satsUse)))
		s.WriteString("\n")
		s.WriteString(boxStyle.Render(m.sats.View()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(labelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	logHeight := m.height - 30
	if logHeight < 5 {
		logHeight = 5
	}

	var logContent strings.Builder
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
