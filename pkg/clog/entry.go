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
	"fmt"
	"time"

	"github.com/logrange/range/pkg/utils/encoding/xbinary"
)

type (
	// LogEntry is one human-readable status or audit message emitted by a
	// cluster member. Entries are created by a producer at emission time and
	// are immutable afterwards, they travel by value into a LogSummary.
	LogEntry struct {
		// Name is the human-readable producer name, e.g. "mon.a"
		Name string

		// Rank is the producer identity used for the entry key
		Rank string

		// Addrs contains zero or more network endpoints of the producer
		Addrs []string

		// Stamp is the emission wall-clock time in nanoseconds
		Stamp uint64

		// Seq is the producer-local monotonically increasing sequence number
		Seq uint64

		// Sev is the entry severity
		Sev Severity

		// Msg is the message text
		Msg string

		// Channel is the text category of the entry ("cluster", "audit" etc.)
		Channel string
	}
)

const entVersion = 0x20 // bits 5-7 contain version. bits 0-4 contain flags for optional fields
const entFlagAddrs = 1

const stampFmt = "2006-01-02T15:04:05.000000Z07:00"

// Key derives the entry identity. It is pure and O(1), the key is never
// stored inside the entry.
func (e *LogEntry) Key() LogEntryKey {
	return NewLogEntryKey(e.Rank, e.Stamp, e.Seq)
}

func (e *LogEntry) String() string {
	return fmt.Sprintf("%s %s (%s) %d : %s %s %s",
		time.Unix(0, int64(e.Stamp)).UTC().Format(stampFmt),
		e.Name, e.Rank, e.Seq, e.Channel, e.Sev, e.Msg)
}

func (e *LogEntry) header() byte {
	if len(e.Addrs) > 0 {
		return entVersion | entFlagAddrs
	}
	return entVersion
}

// WritableSize returns the number of bytes required to marshal the entry
func (e *LogEntry) WritableSize() int {
	sz := 1 + xbinary.WritableStringSize(e.Name) + xbinary.WritableStringSize(e.Rank)
	if len(e.Addrs) > 0 {
		sz += xbinary.WritableUintSize(uint64(len(e.Addrs)))
		for _, a := range e.Addrs {
			sz += xbinary.WritableStringSize(a)
		}
	}
	return sz + 8 + 8 + 1 + xbinary.WritableStringSize(e.Msg) +
		xbinary.WritableStringSize(e.Channel)
}

// Marshal encodes the entry into buf. The field order is part of the wire
// contract: name, rank, [addrs], stamp, seq, severity, msg, channel. Returns
// the number of bytes written or an error if any.
func (e *LogEntry) Marshal(buf []byte) (int, error) {
	nn, err := xbinary.MarshalByte(e.header(), buf)
	if err != nil {
		return nn, err
	}

	n, err := xbinary.MarshalString(e.Name, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalString(e.Rank, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}

	if len(e.Addrs) > 0 {
		n, err = xbinary.MarshalUint(uint(len(e.Addrs)), buf[nn:])
		nn += n
		if err != nil {
			return nn, err
		}
		for _, a := range e.Addrs {
			n, err = xbinary.MarshalString(a, buf[nn:])
			nn += n
			if err != nil {
				return nn, err
			}
		}
	}

	n, err = xbinary.MarshalUint64(e.Stamp, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalUint64(e.Seq, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalByte(byte(int8(e.Sev)), buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalString(e.Msg, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalString(e.Channel, buf[nn:])
	nn += n
	return nn, err
}

// Unmarshal reads the entry from buf. Encodings made before the Addrs field
// was introduced don't have the entFlagAddrs bit set and decode to an empty
// address list. It returns the number of bytes read or an error if any.
func (e *LogEntry) Unmarshal(buf []byte, newBuf bool) (int, error) {
	nn, hdr, err := xbinary.UnmarshalByte(buf)
	if err != nil {
		return nn, err
	}

	var n int
	n, e.Name, err = xbinary.UnmarshalString(buf[nn:], newBuf)
	nn += n
	if err != nil {
		return nn, err
	}
	n, e.Rank, err = xbinary.UnmarshalString(buf[nn:], newBuf)
	nn += n
	if err != nil {
		return nn, err
	}

	e.Addrs = nil
	if hdr&entFlagAddrs != 0 {
		var cnt uint
		n, cnt, err = xbinary.UnmarshalUint(buf[nn:])
		nn += n
		if err != nil {
			return nn, err
		}
		addrs := make([]string, 0, cnt)
		for i := uint(0); i < cnt; i++ {
			var a string
			n, a, err = xbinary.UnmarshalString(buf[nn:], newBuf)
			nn += n
			if err != nil {
				return nn, err
			}
			addrs = append(addrs, a)
		}
		e.Addrs = addrs
	}

	n, e.Stamp, err = xbinary.UnmarshalUint64(buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, e.Seq, err = xbinary.UnmarshalUint64(buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}

	var sb byte
	n, sb, err = xbinary.UnmarshalByte(buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	e.Sev = Severity(int8(sb))

	n, e.Msg, err = xbinary.UnmarshalString(buf[nn:], newBuf)
	nn += n
	if err != nil {
		return nn, err
	}
	n, e.Channel, err = xbinary.UnmarshalString(buf[nn:], newBuf)
	nn += n
	return nn, err
}
