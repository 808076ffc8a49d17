// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/sextant/internal/config"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

// Connection provides a common interface for reading/writing receiver bytes
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// ErrReadOnly is returned when writing to a capture file
var ErrReadOnly = errors.New("capture files are read-only")

// WebSocketConnection wraps a WebSocket connection for byte-level reading.
// Each binary message is a chunk of the receiver byte stream as forwarded by
// the bridge; UBX frames may span several messages, so the framer sees one
// continuous stream.
type WebSocketConnection struct {
	conn    *websocket.Conn
	pending []byte // unread tail of the last binary message
	err     error  // sticky read error, set once the socket fails
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// Drain the previous message before asking the socket for more
	if len(w.pending) > 0 {
		n := copy(p, w.pending)
		w.pending = w.pending[n:]
		return n, nil
	}

	// A failed socket stays failed; gorilla panics on repeated reads after
	// an error, so it must not be read again.
	if w.err != nil {
		return 0, w.err
	}

	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.err = fmt.Errorf("%w: %v", ErrConnectionClosed, err)
			return 0, w.err
		}

		// Bridges interleave text status messages with the binary stream;
		// only binary payloads carry receiver bytes.
		if messageType != websocket.BinaryMessage || len(data) == 0 {
			continue
		}

		n := copy(p, data)
		w.pending = data[n:]
		return n, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	return w.conn.Close()
}

// FileConnection replays a capture file. Reads return io.EOF at the end.
type FileConnection struct {
	f *os.File
}

func (c *FileConnection) Read(p []byte) (int, error) {
	return c.f.Read(p)
}

func (c *FileConnection) Write(p []byte) (int, error) {
	return 0, ErrReadOnly
}

func (c *FileConnection) Close() error {
	return c.f.Close()
}

// OpenSerialConnection opens a serial port connection
func OpenSerialConnection(portName string, baudRate int) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(cc config.ConnectionConfig, password string) (Connection, error) {
	u, err := url.Parse(cc.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: cc.Timeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cc.NoSSLVerify,
		}
	}

	headers := http.Header{}
	if cc.Username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cc.Username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*cc.Timeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, cc.URL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return &WebSocketConnection{conn: conn}, nil
}

// OpenFileConnection opens a capture file for replay
func OpenFileConnection(path string) (Connection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture %s: %w", path, err)
	}
	return &FileConnection{f: f}, nil
}

// PasswordEnv names the environment variable holding the WebSocket password
const PasswordEnv = "SEXTANT_PASSWORD"

// GetPassword returns the WebSocket password. PasswordEnv wins when set, so
// scripted runs never block on a prompt; otherwise the user is asked on the
// terminal with echo disabled.
func GetPassword() (string, error) {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	// the prompt leaves the cursor on its line either way
	defer fmt.Fprintln(os.Stderr)

	if pw, err := term.ReadPassword(int(syscall.Stdin)); err == nil {
		return string(pw), nil
	}

	// stdin is not a terminal (piped input): take the first line as is
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// OpenConnection opens a serial, WebSocket or capture file connection from
// the resolved configuration
func OpenConnection() (Connection, string, error) {
	cc := cfg.Connection

	switch {
	case cc.URL != "":
		password := ""
		if cc.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(cc, password)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", cc.URL), nil

	case cc.Port != "":
		conn, err := OpenSerialConnection(cc.Port, cc.Baud)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("Serial: %s @ %d baud", cc.Port, cc.Baud), nil

	case cc.File != "":
		conn, err := OpenFileConnection(cc.File)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("File: %s", cc.File), nil
	}

	return nil, "", fmt.Errorf("one of --port, --url or --file must be specified")
}

// isEndOfStream reports whether a read error ends the stream for good
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrConnectionClosed) || errors.Is(err, os.ErrClosed)
}
