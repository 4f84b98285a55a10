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

	"github.com/jrivets/log4g"
	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/syslog"
)

type (
	// Dispatcher routes entries to the configured sink applying the
	// per-channel rules. A sink failure is returned to the caller, it has no
	// effect on any summary state.
	Dispatcher struct {
		rules  *Rules
		snk    Sink
		logger log4g.Logger
	}
)

// NewDispatcher builds a dispatcher with the sink described by scfg and the
// channel rules rcfg
func NewDispatcher(scfg *Config, rcfg RulesConfig) (*Dispatcher, error) {
	rules, err := NewRules(rcfg)
	if err != nil {
		return nil, fmt.Errorf("invalid channel rules; %v", err)
	}

	snk, err := NewSink(scfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sink=%v, err=%v", scfg, err)
	}

	d := &Dispatcher{
		rules:  rules,
		snk:    snk,
		logger: log4g.GetLogger("sink.Dispatcher"),
	}
	d.logger.Info("new dispatcher, sink=", scfg, ", channels=", rcfg)
	return d, nil
}

// Dispatch emits e if its channel is enabled and the severity passes the
// channel rule. Entries on the "none" channel are always suppressed.
func (d *Dispatcher) Dispatch(e *clog.LogEntry) error {
	if e.Channel == clog.ChannelNone {
		return nil
	}

	r := d.rules.ruleFor(e.Channel)
	if !r.enabled {
		return nil
	}
	return Render(e, d.snk, r.minSev, r.facility)
}

func (d *Dispatcher) Close() error {
	if d.snk != nil {
		return d.snk.Close()
	}
	return nil
}

// Render sends e to snk when its severity is at least minSev. Entries with
// Unknown severity cannot be ranked, they always pass the filter.
func Render(e *clog.LogEntry, snk Sink, minSev clog.Severity, facility syslog.Priority) error {
	if e.Sev != clog.Unknown && e.Sev < minSev {
		return nil
	}
	return snk.OnEntry(e, facility)
}
