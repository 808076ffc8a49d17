// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ubx

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Statistics tracks frame statistics and error rates. It is safe for
// concurrent use.
type Statistics struct {
	mu sync.Mutex

	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames     uint64
	ValidFrames     uint64
	UnknownFrames   uint64
	ChecksumErrors  uint64
	FramingErrors   uint64
	DecodeErrors    uint64
	AnomalousFrames uint64
	SkippedBytes    uint64

	ByType    map[string]uint64
	Anomalies map[AnomalyType]uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// StatsSnapshot is a point-in-time copy of the counters
type StatsSnapshot struct {
	StartTime      time.Time         `json:"startTime"`
	LastUpdateTime time.Time         `json:"lastUpdateTime"`
	TotalFrames    uint64            `json:"totalFrames"`
	ValidFrames    uint64            `json:"validFrames"`
	UnknownFrames  uint64            `json:"unknownFrames"`
	ChecksumErrors uint64            `json:"checksumErrors"`
	FramingErrors  uint64            `json:"framingErrors"`
	DecodeErrors   uint64            `json:"decodeErrors"`
	Anomalous      uint64            `json:"anomalousFrames"`
	SkippedBytes   uint64            `json:"skippedBytes"`
	ByType         map[string]uint64 `json:"byType"`
	Anomalies      map[string]uint64 `json:"anomalies"`
	FrameRate      float64           `json:"frameRate"`
	ErrorRate      float64           `json:"errorRate"`
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		ByType:         make(map[string]uint64),
		Anomalies:      make(map[AnomalyType]uint64),
	}
}

// Update records one dispatched frame. m is nil for unknown frames and
// failed decodes.
func (s *Statistics) Update(f *Frame, m Message, decodeErr error, validationErrors []ValidationError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFrames++
	s.LastUpdateTime = time.Now()

	switch {
	case decodeErr != nil:
		s.DecodeErrors++
		s.ByType[f.Name()]++
	case m == nil:
		s.UnknownFrames++
	default:
		s.ByType[m.MessageType()]++
	}

	for _, v := range validationErrors {
		s.Anomalies[v.Type]++
	}
	if len(validationErrors) > 0 {
		s.AnomalousFrames++
	} else if decodeErr == nil && m != nil {
		s.ValidFrames++
	}
}

// RecordFrameError records a framer failure
func (s *Statistics) RecordFrameError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFrames++
	s.LastUpdateTime = time.Now()
	if errors.Is(err, ErrChecksum) {
		s.ChecksumErrors++
	} else {
		s.FramingErrors++
	}
}

// RecordSkipped records bytes discarded while searching for sync
func (s *Statistics) RecordSkipped(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.SkippedBytes += uint64(n)
	s.mu.Unlock()
}

// calculateRates updates rates; s.mu must be held
func (s *Statistics) calculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		errorCount := s.ChecksumErrors + s.FramingErrors + s.DecodeErrors + s.AnomalousFrames
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()
}

// Snapshot returns a copy of the counters with rates calculated
func (s *Statistics) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calculateRates()

	snap := StatsSnapshot{
		StartTime:      s.StartTime,
		LastUpdateTime: s.LastUpdateTime,
		TotalFrames:    s.TotalFrames,
		ValidFrames:    s.ValidFrames,
		UnknownFrames:  s.UnknownFrames,
		ChecksumErrors: s.ChecksumErrors,
		FramingErrors:  s.FramingErrors,
		DecodeErrors:   s.DecodeErrors,
		Anomalous:      s.AnomalousFrames,
		SkippedBytes:   s.SkippedBytes,
		ByType:         make(map[string]uint64, len(s.ByType)),
		Anomalies:      make(map[string]uint64, len(s.Anomalies)),
		FrameRate:      s.FrameRate,
		ErrorRate:      s.ErrorRate,
	}
	for k, v := range s.ByType {
		snap.ByType[k] = v
	}
	for k, v := range s.Anomalies {
		snap.Anomalies[k.String()] = v
	}
	return snap
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	snap := s.Snapshot()

	percent := func(n uint64) float64 {
		if snap.TotalFrames == 0 {
			return 0
		}
		return float64(n) * 100.0 / float64(snap.TotalFrames)
	}

	elapsed := time.Since(snap.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", snap.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", snap.ValidFrames, percent(snap.ValidFrames))

	if snap.UnknownFrames > 0 {
		result += fmt.Sprintf("Unknown Frames:  %8d (%.1f%%)\n", snap.UnknownFrames, percent(snap.UnknownFrames))
	}
	if snap.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", snap.ChecksumErrors, percent(snap.ChecksumErrors))
	}
	if snap.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d (%.1f%%)\n", snap.FramingErrors, percent(snap.FramingErrors))
	}
	if snap.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d (%.1f%%)\n", snap.DecodeErrors, percent(snap.DecodeErrors))
	}
	if snap.Anomalous > 0 {
		result += fmt.Sprintf("Anomalous:       %8d (%.1f%%)\n", snap.Anomalous, percent(snap.Anomalous))
		for _, name := range sortedKeys(snap.Anomalies) {
			result += fmt.Sprintf("  %-18s %5d\n", name+":", snap.Anomalies[name])
		}
	}
	if snap.SkippedBytes > 0 {
		result += fmt.Sprintf("Skipped Bytes:   %8d\n", snap.SkippedBytes)
	}
	if len(snap.ByType) > 0 {
		result += "By Type:\n"
		for _, name := range sortedKeys(snap.ByType) {
			result += fmt.Sprintf("  %-18s %5d\n", name+":", snap.ByType[name])
		}
	}

	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", snap.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", snap.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalFrames = 0
	s.ValidFrames = 0
	s.UnknownFrames = 0
	s.ChecksumErrors = 0
	s.FramingErrors = 0
	s.DecodeErrors = 0
	s.AnomalousFrames = 0
	s.SkippedBytes = 0
	s.ByType = make(map[string]uint64)
	s.Anomalies = make(map[AnomalyType]uint64)
	s.FrameRate = 0
	s.ErrorRate = 0
}

func sortedKeys(m map[string]uint64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
