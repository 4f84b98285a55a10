// Copyright 2018-2019 The logrange Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package syslog contains a simple syslog client which writes RFC5424
// formatted messages to a remote daemon over TCP, UDP or TLS.
package syslog

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"time"
)

type (
	// Config defines the syslog client settings
	Config struct {
		// Protocol is one of "tcp", "udp" or "tls"
		Protocol string

		// RemoteAddr is the syslog daemon address like "127.0.0.1:514"
		RemoteAddr string

		// RootCAFile is the CA certificates chain, may be set for tls only
		RootCAFile string

		// ReplaceNewLine removes new lines from messages when set
		ReplaceNewLine bool

		// LineLenLimit truncates messages longer than the limit, 0 disables it
		LineLenLimit int

		// ConnectTimeoutSec and WriteTimeoutSec bound the network operations
		ConnectTimeoutSec int
		WriteTimeoutSec   int
	}

	// Logger writes Messages to the remote syslog daemon. It re-connects
	// lazily after a write failure.
	Logger struct {
		cfg     Config
		rootCAs *x509.CertPool
		conn    net.Conn
	}
)

const (
	ProtoTCP = "tcp"
	ProtoUDP = "udp"
	ProtoTLS = "tls"
)

// NewDefaultConfig returns the client settings for a local daemon
func NewDefaultConfig() *Config {
	return &Config{
		Protocol:          ProtoTCP,
		RemoteAddr:        "127.0.0.1:514",
		ReplaceNewLine:    true,
		LineLenLimit:      1024,
		ConnectTimeoutSec: 10,
		WriteTimeoutSec:   5,
	}
}

// Check returns an error if the config is inconsistent
func (c *Config) Check() error {
	if c.Protocol != ProtoTCP && c.Protocol != ProtoUDP && c.Protocol != ProtoTLS {
		return fmt.Errorf("unknown Protocol=%v", c.Protocol)
	}
	if c.Protocol != ProtoTLS && c.RootCAFile != "" {
		return fmt.Errorf("RootCAFile=%v, must be empty if Protocol == %v", c.RootCAFile, c.Protocol)
	}
	if c.RemoteAddr == "" {
		return fmt.Errorf("RemoteAddr must be non-empty")
	}
	if c.LineLenLimit < 0 || c.ConnectTimeoutSec < 0 || c.WriteTimeoutSec < 0 {
		return fmt.Errorf("LineLenLimit, ConnectTimeoutSec and WriteTimeoutSec must be >= 0")
	}
	return nil
}

//===================== logger =====================

// NewLogger creates the client by the config provided and connects to the
// remote daemon
func NewLogger(cfg *Config) (*Logger, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	l := &Logger{cfg: *cfg}
	if err := l.loadRootCA(); err != nil {
		return nil, err
	}

	return l, l.connect()
}

// Write sends m to the daemon. On a failure the connection is dropped, the
// next Write will try to re-connect.
func (l *Logger) Write(m *Message) error {
	if l.conn == nil {
		if err := l.connect(); err != nil {
			return err
		}
	}

	timeout := time.Now().Add(time.Second * time.Duration(l.cfg.WriteTimeoutSec))
	err := l.conn.SetWriteDeadline(timeout)
	if err == nil {
		_, err = io.WriteString(l.conn, Format(m, l.cfg.ReplaceNewLine, l.cfg.LineLenLimit))
	}

	if err != nil {
		_ = l.Close()
	}
	return err
}

func (l *Logger) Close() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.conn = nil
	return err
}

func (l *Logger) loadRootCA() error {
	if l.cfg.RootCAFile == "" {
		return nil
	}

	rootPem, err := ioutil.ReadFile(l.cfg.RootCAFile)
	if err != nil {
		return err
	}
	l.rootCAs = x509.NewCertPool()
	if !l.rootCAs.AppendCertsFromPEM(rootPem) {
		return fmt.Errorf("CA certificates chain is incorrect")
	}
	return nil
}

func (l *Logger) connect() error {
	if l.conn != nil {
		_ = l.Close()
	}

	timeout := time.Second * time.Duration(l.cfg.ConnectTimeoutSec)
	if l.cfg.Protocol == ProtoTLS {
		var tcfg *tls.Config
		if l.rootCAs != nil {
			tcfg = &tls.Config{RootCAs: l.rootCAs}
		}
		dialer := &net.Dialer{Timeout: timeout}
		conn, err := tls.DialWithDialer(dialer, l.cfg.Protocol, l.cfg.RemoteAddr, tcfg)
		if err != nil {
			return err
		}
		l.conn = conn
		return nil
	}

	conn, err := net.DialTimeout(l.cfg.Protocol, l.cfg.RemoteAddr, timeout)
	if err != nil {
		return err
	}
	l.conn = conn
	return nil
}
