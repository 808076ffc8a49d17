// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"io"

	"github.com/Thermoquad/sextant/internal/sink"
	"github.com/Thermoquad/sextant/pkg/ubx"
	"github.com/sirupsen/logrus"
)

// frameEvent is the outcome of one unit of stream processing. Exactly one of
// frameErr, unknown, decodeErr or msg describes what happened.
type frameEvent struct {
	frame      *ubx.Frame
	msg        ubx.Message
	unknown    *ubx.Unknown
	decodeErr  error
	frameErr   error
	validation []ubx.ValidationError
}

// syncEvent is reported once, when the first valid frame is seen
type syncEvent struct {
	skipped int
}

// pipeline turns a receiver byte stream into decoded, validated and
// archived messages
type pipeline struct {
	dispatcher *ubx.Dispatcher
	stats      *ubx.Statistics
	sink       sink.Sink
	log        logrus.FieldLogger

	onSync  func(syncEvent)
	unknown *ubx.Unknown
}

func newPipeline(stats *ubx.Statistics, out sink.Sink, logger logrus.FieldLogger) (*pipeline, error) {
	p := &pipeline{
		stats: stats,
		sink:  out,
		log:   logger,
	}
	d, err := newDispatcher(ubx.WithUnknownHandler(func(u ubx.Unknown) {
		p.unknown = &u
	}))
	if err != nil {
		return nil, err
	}
	p.dispatcher = d
	return p, nil
}

// process decodes, validates and archives one frame
func (p *pipeline) process(f *ubx.Frame) frameEvent {
	p.unknown = nil
	ev := frameEvent{frame: f}

	msg, err := p.dispatcher.Dispatch(f)
	switch {
	case err != nil:
		ev.decodeErr = err
		ev.validation = ubx.ValidateDecodeError(err)
		p.log.WithError(err).WithField("type", f.Name()).Debug("decode failed")
	case msg == nil:
		ev.unknown = p.unknown
	default:
		ev.msg = msg
		ev.validation = ubx.ValidateMessage(f, msg)
	}

	if p.stats != nil {
		p.stats.Update(f, msg, err, ev.validation)
	}

	if msg != nil && p.sink != nil {
		if err := p.sink.Write(ubx.NewRecord(f, msg)); err != nil {
			p.log.WithError(err).Debug("record not archived")
		}
	}
	return ev
}

func (p *pipeline) recordSkipped(n int) {
	if n > 0 && p.stats != nil {
		p.stats.RecordSkipped(n)
	}
}

// frameSize is the wire size of a decoded frame
func frameSize(f *ubx.Frame) int {
	return ubx.HeaderSize + len(f.Payload) + ubx.ChecksumSize
}

// candidateSize is the number of bytes the framer consumed for a rejected
// frame: the header for an oversize length, the whole frame for a checksum
// mismatch.
func candidateSize(err error) int {
	var fe *ubx.FrameError
	if !errors.As(err, &fe) {
		return 0
	}
	if errors.Is(fe, ubx.ErrFrameTooLarge) {
		return ubx.HeaderSize
	}
	return ubx.HeaderSize + fe.Length + ubx.ChecksumSize
}

// run reads conn until it ends or ctx is cancelled, handing every event to
// handle. Framing errors before the first valid frame only count as skipped
// bytes. A clean end of stream returns nil.
func (p *pipeline) run(ctx context.Context, conn io.ReadCloser, handle func(frameEvent)) error {
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	framer := ubx.NewFramer()
	synchronized := false
	// bytes consumed since the last frame or reported frame error
	pending := 0
	buf := make([]byte, 4096)

	for {
		n, err := conn.Read(buf)
		for i := 0; i < n; i++ {
			pending++
			frame, ferr := framer.DecodeByte(buf[i])

			if ferr != nil {
				// Before the first valid frame a failed candidate is just
				// noise; its bytes stay pending and count as skipped.
				if !synchronized {
					continue
				}
				// The rejected candidate is accounted for by the frame
				// error; only the noise ahead of it counts as skipped.
				p.recordSkipped(pending - candidateSize(ferr))
				pending = 0
				if p.stats != nil {
					p.stats.RecordFrameError(ferr)
				}
				handle(frameEvent{frameErr: ferr})
				continue
			}

			if frame == nil {
				continue
			}

			skipped := pending - frameSize(frame)
			pending = 0
			if !synchronized {
				synchronized = true
				if p.onSync != nil {
					p.onSync(syncEvent{skipped: skipped})
				}
			}
			p.recordSkipped(skipped)

			handle(p.process(frame))
		}

		if err != nil {
			if ctx.Err() != nil || isEndOfStream(err) {
				return nil
			}
			if n == 0 {
				return err
			}
			p.log.WithError(err).Warn("read error")
		}
	}
}
