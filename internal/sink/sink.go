// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sink archives decoded UBX records.
package sink

import (
	"errors"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/sirupsen/logrus"
)

// Sink receives decoded records
type Sink interface {
	Write(rec *ubx.Record) error
	Close() error
}

// Multi fans records out to several sinks. A failing sink is logged and
// does not stop delivery to the others.
type Multi struct {
	sinks []Sink
	log   logrus.FieldLogger
}

// NewMulti creates a fan-out sink
func NewMulti(log logrus.FieldLogger, sinks ...Sink) *Multi {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Multi{sinks: sinks, log: log}
}

// Add appends a sink
func (m *Multi) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

// Len returns the number of sinks
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Write delivers rec to every sink and joins their errors
func (m *Multi) Write(rec *ubx.Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(rec); err != nil {
			m.log.WithError(err).WithField("type", rec.Type).Warn("sink write failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
