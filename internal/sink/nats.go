// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sink

import (
	"encoding/json"
	"fmt"

	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/nats-io/nats.go"
)

// publisher is the subset of *nats.Conn used by the NATS sink
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes each record as JSON on <subject>.<TYPE>
type NATS struct {
	pub     publisher
	conn    *nats.Conn
	subject string
}

// DialNATS connects to the server at url
func DialNATS(url, subject string) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("sextant"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATS{pub: nc, conn: nc, subject: subject}, nil
}

// Subject returns the subject a record of typ is published on
func (s *NATS) Subject(typ string) string {
	return s.subject + "." + typ
}

// Write implements Sink
func (s *NATS) Write(rec *ubx.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", rec.Type, err)
	}
	if err := s.pub.Publish(s.Subject(rec.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", rec.Type, err)
	}
	return nil
}

// Close drains the connection
func (s *NATS) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Drain()
}
