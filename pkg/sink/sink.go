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

package sink

import (
	"fmt"
	"net"
	"time"

	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/syslog"
	"github.com/logrange/clog/pkg/utils"
	"github.com/mitchellh/mapstructure"
)

type (
	// Config describes a sink to be built by NewSink. Params depend on the
	// sink type, for syslog they are the syslog.Config fields.
	Config struct {
		Type   string
		Params map[string]interface{}
	}

	// Sink receives entries for external emission. Implementations report a
	// failure by the returned error, they never affect the summary state.
	Sink interface {
		// OnEntry emits e. The facility is honored by syslog sinks and
		// ignored by the others.
		OnEntry(e *clog.LogEntry, facility syslog.Priority) error
		Close() error
	}

	stdoutSink struct {
	}

	syslogSink struct {
		slog *syslog.Logger
	}
)

const (
	SnkTypeStdout = "stdout"
	SnkTypeSyslog = "syslog"
)

// NewSink builds a sink by the config provided
func NewSink(cfg *Config) (Sink, error) {
	switch cfg.Type {
	case SnkTypeStdout:
		return &stdoutSink{}, nil
	case SnkTypeSyslog:
		return newSyslogSink(cfg.Params)
	}
	return nil, fmt.Errorf("unknown sink type=%v", cfg.Type)
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}

//===================== stdoutSink =====================

func (ss *stdoutSink) OnEntry(e *clog.LogEntry, facility syslog.Priority) error {
	fmt.Println(e)
	return nil
}

func (ss *stdoutSink) Close() error {
	return nil
}

//===================== syslogSink =====================

func newSyslogSink(params map[string]interface{}) (Sink, error) {
	scfg := syslog.NewDefaultConfig()
	if err := mapstructure.Decode(params, scfg); err != nil {
		return nil, fmt.Errorf("unable to decode Params=%v; %v", params, err)
	}

	slog, err := syslog.NewLogger(scfg)
	if err != nil {
		return nil, fmt.Errorf("failed creating syslog logger, err=%v", err)
	}

	return &syslogSink{slog: slog}, nil
}

func (ss *syslogSink) OnEntry(e *clog.LogEntry, facility syslog.Priority) error {
	return ss.slog.Write(&syslog.Message{
		Severity: e.Sev.SyslogPriority(),
		Facility: facility,
		Time:     time.Unix(0, int64(e.Stamp)),
		Hostname: entryHostname(e),
		Tag:      e.Name,
		Msg:      e.Msg,
	})
}

func (ss *syslogSink) Close() error {
	if ss.slog != nil {
		return ss.slog.Close()
	}
	return nil
}

func entryHostname(e *clog.LogEntry) string {
	if len(e.Addrs) > 0 {
		if h, _, err := net.SplitHostPort(e.Addrs[0]); err == nil && h != "" {
			return h
		}
	}
	return "localhost"
}
