// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/Thermoquad/sextant/internal/sink"
	"github.com/sirupsen/logrus"
)

// openSinks opens every archive named in the record section
func openSinks(rc config.RecordConfig, logger logrus.FieldLogger) (*sink.Multi, error) {
	multi := sink.NewMulti(logger)

	fail := func(err error) (*sink.Multi, error) {
		_ = multi.Close()
		return nil, err
	}

	if rc.JSONL != "" {
		s, err := sink.OpenJSONL(rc.JSONL)
		if err != nil {
			return fail(err)
		}
		multi.Add(s)
		logger.WithField("path", rc.JSONL).Info("recording JSON lines")
	}
	if rc.CBOR != "" {
		s, err := sink.OpenCBOR(rc.CBOR)
		if err != nil {
			return fail(err)
		}
		multi.Add(s)
		logger.WithField("path", rc.CBOR).Info("recording CBOR sequence")
	}
	if rc.SQLite != "" {
		s, err := sink.OpenSQLite(rc.SQLite)
		if err != nil {
			return fail(err)
		}
		multi.Add(s)
		logger.WithField("path", rc.SQLite).Info("recording to SQLite")
	}
	if rc.NATSURL != "" {
		s, err := sink.DialNATS(rc.NATSURL, rc.NATSSubject)
		if err != nil {
			return fail(err)
		}
		multi.Add(s)
		logger.WithFields(logrus.Fields{"url": rc.NATSURL, "subject": rc.NATSSubject}).Info("publishing to NATS")
	}
	return multi, nil
}

// streamWithReconnect runs the pipeline over the configured connection.
// Live connections are reopened with exponential backoff when they drop; a
// capture file is read once.
func streamWithReconnect(ctx context.Context, pl *pipeline, handle func(frameEvent)) error {
	backoff := 1 * time.Second
	maxBackoff := 30 * time.Second

	for {
		conn, connInfo, err := OpenConnection()
		if err == nil {
			log.WithField("connection", connInfo).Info("connected")
			backoff = 1 * time.Second

			err = pl.run(ctx, conn, handle)
			conn.Close()

			if cfg.Connection.File != "" || ctx.Err() != nil {
				return err
			}
			if err == nil {
				err = fmt.Errorf("stream ended")
			}
		} else if cfg.Connection.File != "" {
			return err
		}

		log.WithError(err).WithField("retry", backoff).Warn("connection lost")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
