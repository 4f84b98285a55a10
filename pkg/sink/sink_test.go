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
	"testing"

	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/syslog"
	"github.com/logrange/clog/pkg/utils"
	"github.com/stretchr/testify/assert"
)

type captureSink struct {
	entries    []clog.LogEntry
	facilities []syslog.Priority
	err        error
}

func (cs *captureSink) OnEntry(e *clog.LogEntry, facility syslog.Priority) error {
	if cs.err != nil {
		return cs.err
	}
	cs.entries = append(cs.entries, *e)
	cs.facilities = append(cs.facilities, facility)
	return nil
}

func (cs *captureSink) Close() error {
	return nil
}

func entry(channel string, sev clog.Severity) *clog.LogEntry {
	return &clog.LogEntry{Name: "mon.a", Rank: "mon.0", Stamp: 1, Seq: 1, Sev: sev,
		Msg: "m", Channel: channel}
}

func TestRenderFiltersBySeverity(t *testing.T) {
	cs := &captureSink{}

	assert.NoError(t, Render(entry(clog.ChannelCluster, clog.Debug), cs, clog.Warn, syslog.FacilityDaemon))
	assert.Equal(t, 0, len(cs.entries))

	assert.NoError(t, Render(entry(clog.ChannelCluster, clog.Error), cs, clog.Warn, syslog.FacilityDaemon))
	assert.Equal(t, 1, len(cs.entries))
}

func TestRenderUnknownAlwaysPasses(t *testing.T) {
	cs := &captureSink{}
	assert.NoError(t, Render(entry(clog.ChannelCluster, clog.Unknown), cs, clog.Error, syslog.FacilityDaemon))
	assert.Equal(t, 1, len(cs.entries))
}

func TestRenderReportsSinkFailure(t *testing.T) {
	cs := &captureSink{err: fmt.Errorf("daemon is gone")}
	err := Render(entry(clog.ChannelCluster, clog.Error), cs, clog.Debug, syslog.FacilityDaemon)
	assert.Error(t, err)
}

func TestDispatcherRules(t *testing.T) {
	rules, err := NewRules(RulesConfig{
		clog.ChannelRulesDefaultKey: {MinSeverity: "info", Facility: "daemon"},
		clog.ChannelAudit:           {MinSeverity: "sec", Facility: "audit"},
		"noisy":                     {Enabled: utils.BoolPtr(false)},
	})
	assert.NoError(t, err)

	cs := &captureSink{}
	d := &Dispatcher{rules: rules, snk: cs}

	// "none" is always suppressed
	assert.NoError(t, d.Dispatch(entry(clog.ChannelNone, clog.Error)))
	// a disabled channel is suppressed too
	assert.NoError(t, d.Dispatch(entry("noisy", clog.Error)))
	// below the default minimum severity
	assert.NoError(t, d.Dispatch(entry(clog.ChannelCluster, clog.Debug)))
	assert.Equal(t, 0, len(cs.entries))

	// the audit channel has its own rule and facility
	assert.NoError(t, d.Dispatch(entry(clog.ChannelAudit, clog.Security)))
	assert.Equal(t, 1, len(cs.entries))
	assert.Equal(t, syslog.Priority(syslog.FacilityAudit), cs.facilities[0])

	// an unconfigured channel falls back to the default rule
	assert.NoError(t, d.Dispatch(entry("backfill", clog.Info)))
	assert.Equal(t, 2, len(cs.entries))
	assert.Equal(t, syslog.Priority(syslog.FacilityDaemon), cs.facilities[1])
}

func TestNewRulesBadFacility(t *testing.T) {
	_, err := NewRules(RulesConfig{"ch": {Facility: "no-such-facility"}})
	assert.Error(t, err)
}

func TestNewRulesUnknownSeverityInherits(t *testing.T) {
	rules, err := NewRules(RulesConfig{
		clog.ChannelRulesDefaultKey: {MinSeverity: "warn"},
		"ch":                        {MinSeverity: "not-a-severity"},
	})
	assert.NoError(t, err)
	assert.Equal(t, clog.Warn, rules.ruleFor("ch").minSev)
}

func TestNewSinkUnknownType(t *testing.T) {
	_, err := NewSink(&Config{Type: "nats"})
	assert.Error(t, err)
}

func TestNewStdoutSink(t *testing.T) {
	snk, err := NewSink(&Config{Type: SnkTypeStdout})
	assert.NoError(t, err)
	assert.NoError(t, snk.Close())
}
