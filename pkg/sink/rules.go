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

	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/syslog"
	"github.com/logrange/clog/pkg/utils"
)

type (
	// RuleConfig describes the emission settings for one channel. A nil
	// Enabled means "inherit from the default rule".
	RuleConfig struct {
		Enabled     *bool
		MinSeverity string
		Facility    string
	}

	// RulesConfig maps a channel name to its rule. The "default" key holds
	// the fallback applied to channels without an explicit rule.
	RulesConfig map[string]*RuleConfig

	rule struct {
		enabled  bool
		minSev   clog.Severity
		facility syslog.Priority
	}

	// Rules is the compiled form of RulesConfig
	Rules struct {
		m   map[string]rule
		def rule
	}
)

// NewRules compiles cfg. The "default" rule is compiled first, the explicit
// channel rules inherit the fields they leave unset from it. Unknown severity
// tokens degrade to the inherited value, unknown facility tokens are an error
// since they come from config, not from remote producers.
func NewRules(cfg RulesConfig) (*Rules, error) {
	def := rule{enabled: true, minSev: clog.Debug, facility: syslog.FacilityDaemon}
	if rc, ok := cfg[clog.ChannelRulesDefaultKey]; ok {
		var err error
		if def, err = compileRule(rc, def); err != nil {
			return nil, fmt.Errorf("invalid rule for channel %q; %v", clog.ChannelRulesDefaultKey, err)
		}
	}

	r := &Rules{m: make(map[string]rule, len(cfg)), def: def}
	for ch, rc := range cfg {
		if ch == clog.ChannelRulesDefaultKey {
			continue
		}
		cr, err := compileRule(rc, def)
		if err != nil {
			return nil, fmt.Errorf("invalid rule for channel %q; %v", ch, err)
		}
		r.m[ch] = cr
	}
	return r, nil
}

func compileRule(rc *RuleConfig, def rule) (rule, error) {
	cr := def
	if rc == nil {
		return cr, nil
	}
	if rc.Enabled != nil {
		cr.enabled = *rc.Enabled
	}
	if rc.MinSeverity != "" {
		cr.minSev = clog.ParseSeverity(rc.MinSeverity)
		if cr.minSev == clog.Unknown {
			cr.minSev = def.minSev
		}
	}
	if rc.Facility != "" {
		f, err := syslog.Facility(rc.Facility)
		if err != nil {
			return cr, err
		}
		cr.facility = f
	}
	return cr, nil
}

func (r *Rules) ruleFor(channel string) rule {
	if cr, ok := r.m[channel]; ok {
		return cr
	}
	return r.def
}

func (rc RulesConfig) String() string {
	return utils.ToJsonStr(rc)
}
