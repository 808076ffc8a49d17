// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Thermoquad/sextant/pkg/ubx"
)

// JSONL writes one JSON object per line
type JSONL struct {
	mu     sync.Mutex
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONL writes records to w
func NewJSONL(w io.Writer) *JSONL {
	bw := bufio.NewWriter(w)
	s := &JSONL{w: bw, enc: json.NewEncoder(bw)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenJSONL appends records to the file at path
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl: %w", err)
	}
	return NewJSONL(f), nil
}

// Write implements Sink
func (s *JSONL) Write(rec *ubx.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(rec); err != nil {
		return fmt.Errorf("jsonl: %w", err)
	}
	return s.w.Flush()
}

// Close implements Sink
func (s *JSONL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// CBOR writes records as a CBOR sequence (RFC 8742)
type CBOR struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewCBOR writes records to w
func NewCBOR(w io.Writer) *CBOR {
	s := &CBOR{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenCBOR appends records to the file at path
func OpenCBOR(path string) (*CBOR, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open cbor: %w", err)
	}
	return NewCBOR(f), nil
}

// Write implements Sink
func (s *CBOR) Write(rec *ubx.Record) error {
	data, err := ubx.MarshalRecordCBOR(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("cbor: %w", err)
	}
	return s.w.Flush()
}

// Close implements Sink
func (s *CBOR) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
