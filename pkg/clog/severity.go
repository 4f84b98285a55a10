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

package clog

import (
	"strings"

	"github.com/logrange/clog/pkg/syslog"
)

type (
	// Severity defines how important a cluster log entry is. The numeric
	// values are part of the wire encoding, so they must not be reordered.
	Severity int
)

const (
	Debug Severity = iota
	Info
	Security
	Warn
	Error
)

// Unknown is the sentinel returned for unparsable severity tokens. It is a
// valid value for an entry, callers must treat it as a distinct, non-fatal
// outcome rather than an error.
const Unknown Severity = -1

// Well-known channel names. Any other non-empty string is a valid free-form
// channel as well.
const (
	ChannelNone    = "none"
	ChannelDefault = "cluster"
	ChannelCluster = "cluster"
	ChannelAudit   = "audit"
)

// ChannelRulesDefaultKey is the key name used in the channel rules config for
// the fallback rule, e.g. "default=true foo=false bar=false"
const ChannelRulesDefaultKey = "default"

// ParseSeverity turns a text token into a Severity. The function is total:
// unrecognized input yields Unknown, never an error.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return Debug
	case "info", "inf":
		return Info
	case "sec", "security":
		return Security
	case "warn", "warning", "wrn":
		return Warn
	case "err", "error":
		return Error
	}
	return Unknown
}

// String returns the display tag for the severity
func (s Severity) String() string {
	switch s {
	case Debug:
		return "[DBG]"
	case Info:
		return "[INF]"
	case Security:
		return "[SEC]"
	case Warn:
		return "[WRN]"
	case Error:
		return "[ERR]"
	}
	return "[???]"
}

// SyslogPriority maps the severity to a syslog severity code. Unknown maps to
// info, which is the best-effort default for entries that came with a token
// this version does not recognize.
func (s Severity) SyslogPriority() syslog.Priority {
	switch s {
	case Debug:
		return syslog.SeverityDebug
	case Info:
		return syslog.SeverityInfo
	case Security:
		return syslog.SeverityNotice
	case Warn:
		return syslog.SeverityWarning
	case Error:
		return syslog.SeverityErr
	}
	return syslog.SeverityInfo
}
