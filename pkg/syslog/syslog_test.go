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

package syslog

import (
	"net"
	"strings"
	"testing"
	"time"
)

func newMsg(text string) *Message {
	return &Message{
		Severity: SeverityInfo,
		Facility: FacilityLocal6,
		Hostname: "localhost",
		Tag:      "TestSyslog",
		Time:     time.Now(),
		Msg:      text,
	}
}

func TestFormat(t *testing.T) {
	m := newMsg("hello")
	s := Format(m, false, 0)
	if !strings.HasPrefix(s, "<182>1 ") {
		t.Fatal("expected priority 182 (local6.info), but got ", s)
	}
	if !strings.HasSuffix(s, " localhost TestSyslog - - - hello") {
		t.Fatal("unexpected layout: ", s)
	}
}

func TestFormatReplacesNewLines(t *testing.T) {
	s := Format(newMsg("he\nllo"), true, 0)
	if strings.Contains(s, "\n") {
		t.Fatal("new line must be removed: ", s)
	}
}

func TestFormatTruncates(t *testing.T) {
	s := Format(newMsg("0123456789"), false, 5)
	if !strings.Contains(s, "01234... [truncated]") {
		t.Fatal("expected truncation marker: ", s)
	}
}

func TestTCPSyslog(t *testing.T) {
	msgs := make(chan string)
	defer close(msgs)

	ls, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal("can't start server, err=", err)
	}
	defer ls.Close()
	go func() {
		for {
			conn, err := ls.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 1024)
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			msgs <- string(buf[:n])
		}
	}()

	cfg := NewDefaultConfig()
	cfg.RemoteAddr = ls.Addr().String()
	cfg.LineLenLimit = 5

	slog, err := NewLogger(cfg)
	if err != nil {
		t.Fatal("can't start client, err=", err)
	}

	msg := newMsg("si\nmple syslog test!")
	if err = slog.Write(msg); err != nil {
		t.Fatal("client failed to write, err=", err)
	}
	if err = slog.Close(); err != nil {
		t.Fatal("failed client close, err=", err)
	}

	act, ok := <-msgs
	if !ok || act != Format(msg, true, 5) {
		t.Fatal("actual didn't match with expected: ", act)
	}
}

func TestConfigCheck(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Check(); err != nil {
		t.Fatal("default config must be valid, err=", err)
	}

	cfg.Protocol = "smtp"
	if err := cfg.Check(); err == nil {
		t.Fatal("unknown protocol must be rejected")
	}

	cfg = NewDefaultConfig()
	cfg.RootCAFile = "/tmp/ca.pem"
	if err := cfg.Check(); err == nil {
		t.Fatal("RootCAFile must be rejected for tcp")
	}

	cfg = NewDefaultConfig()
	cfg.RemoteAddr = ""
	if err := cfg.Check(); err == nil {
		t.Fatal("empty RemoteAddr must be rejected")
	}
}
