// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the sextant YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultBaud        = 115200
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultNATSSubject = "ubx"
	DefaultListen      = ":8080"
	DefaultTimeout     = 5 * time.Second
)

type Config struct {
	Connection ConnectionConfig `yaml:"connection"`
	Log        LogConfig        `yaml:"log"`
	Record     RecordConfig     `yaml:"record"`
	Web        WebConfig        `yaml:"web"`

	// Tables adds message names to the registry: NAME: [class, id]
	Tables map[string][]int `yaml:"tables"`
}

type ConnectionConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	URL         string        `yaml:"url"`
	Username    string        `yaml:"username"`
	NoSSLVerify bool          `yaml:"no_ssl_verify"`
	File        string        `yaml:"file"`
	Timeout     time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RecordConfig struct {
	JSONL       string `yaml:"jsonl"`
	CBOR        string `yaml:"cbor"`
	SQLite      string `yaml:"sqlite"`
	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

// Default returns a configuration with every default applied
func Default() Config {
	var cfg Config
	if err := cfg.normalize(); err != nil {
		// defaults are always valid
		panic(err)
	}
	return cfg
}

// Load reads and validates the file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.Connection.Baud == 0 {
		cfg.Connection.Baud = DefaultBaud
	}
	if cfg.Connection.Baud < 0 {
		return fmt.Errorf("connection.baud must be > 0")
	}
	if cfg.Connection.Timeout <= 0 {
		cfg.Connection.Timeout = DefaultTimeout
	}
	set := 0
	for _, v := range []string{cfg.Connection.Port, cfg.Connection.URL, cfg.Connection.File} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return fmt.Errorf("connection.port, connection.url and connection.file are mutually exclusive")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Format != "text" && cfg.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json")
	}

	if cfg.Record.NATSSubject == "" {
		cfg.Record.NATSSubject = DefaultNATSSubject
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = DefaultListen
	}

	for name, key := range cfg.Tables {
		if len(key) != 2 {
			return fmt.Errorf("tables.%s must be [class, id]", name)
		}
		for _, v := range key {
			if v < 0 || v > 0xFF {
				return fmt.Errorf("tables.%s: %d is not a byte value", name, v)
			}
		}
	}
	return nil
}

// MessageKeys returns the extra table entries as class/id pairs
func (cfg Config) MessageKeys() map[string][2]uint8 {
	keys := make(map[string][2]uint8, len(cfg.Tables))
	for name, key := range cfg.Tables {
		keys[name] = [2]uint8{uint8(key[0]), uint8(key[1])}
	}
	return keys
}

// Logger builds a logrus logger for the log section
func (cfg Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
