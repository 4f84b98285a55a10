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
	"sort"

	"github.com/logrange/range/pkg/utils/encoding/xbinary"
	"github.com/pkg/errors"
)

type (
	// TailPair couples the summary-local sequence number assigned at Add time
	// with the entry itself
	TailPair struct {
		Seq   uint64
		Entry LogEntry
	}

	// LogSummary is the bounded, deduplicated, multi-channel digest of
	// cluster log entries. It keeps an insertion-ordered tail per channel
	// and a set of all retained entry keys for O(1) membership tests.
	//
	// The structure is pure and synchronous, it provides no internal locking.
	// Callers sharing it between goroutines must serialize Add, Prune and
	// Unmarshal externally; Contains, OrderedTail and Marshal may run
	// concurrently with each other, but not with a mutation.
	LogSummary struct {
		// Version is advisory metadata bumped by the owning authority on
		// each committed change. The summary itself never modifies it.
		Version uint64

		// TailByChannel maps a channel name to its retained tail, insertion
		// order is arrival order
		TailByChannel map[string][]TailPair

		// Seq counts every Add ever made. It is not reset by Prune.
		Seq uint64

		// keys is a derived index over the tails. It is not transmitted, the
		// decode path rebuilds it from the decoded tails.
		keys map[LogEntryKey]struct{}
	}
)

const sumVersion = 0x20 // bits 5-7 contain version, bits 0-4 are reserved flags

// NewLogSummary returns an empty summary with Version=0 and Seq=0
func NewLogSummary() *LogSummary {
	return &LogSummary{
		TailByChannel: make(map[string][]TailPair),
		keys:          make(map[LogEntryKey]struct{}),
	}
}

// Add appends e to the tail of its channel, assigning the next summary-local
// sequence number, and indexes the entry key. Add does not reject duplicate
// keys; callers that need dedup must check Contains(e.Key()) first. The
// permissive contract is intentional, synchronizers pre-check and skip rather
// than rely on rejected inserts.
func (ls *LogSummary) Add(e LogEntry) {
	if ls.keys == nil {
		ls.keys = make(map[LogEntryKey]struct{})
	}
	if ls.TailByChannel == nil {
		ls.TailByChannel = make(map[string][]TailPair)
	}
	ls.Seq++
	ls.keys[e.Key()] = struct{}{}
	ls.TailByChannel[e.Channel] = append(ls.TailByChannel[e.Channel], TailPair{ls.Seq, e})
}

// Prune trims every channel tail down to max entries, dropping the oldest
// ones from the front and removing their keys from the index. Channels at or
// under the limit are not touched. Prune(0) empties the summary tails.
func (ls *LogSummary) Prune(max int) {
	if max < 0 {
		max = 0
	}
	for ch, tail := range ls.TailByChannel {
		if len(tail) <= max {
			continue
		}
		for i := 0; i < len(tail)-max; i++ {
			delete(ls.keys, tail[i].Entry.Key())
		}
		ls.TailByChannel[ch] = tail[len(tail)-max:]
	}
}

// Contains reports whether an entry with the key k is currently retained in
// one of the channel tails. O(1).
func (ls *LogSummary) Contains(k LogEntryKey) bool {
	_, ok := ls.keys[k]
	return ok
}

// OrderedTail merges all channel tails into one sequence ordered by
// (timestamp, local sequence number) ascending, suitable for chronological
// display. It never mutates the summary and returns identical results when
// called repeatedly between mutations.
func (ls *LogSummary) OrderedTail() []LogEntry {
	total := 0
	for _, tail := range ls.TailByChannel {
		total += len(tail)
	}

	pp := make([]TailPair, 0, total)
	for _, tail := range ls.TailByChannel {
		pp = append(pp, tail...)
	}
	sort.Slice(pp, func(i, j int) bool {
		if pp[i].Entry.Stamp != pp[j].Entry.Stamp {
			return pp[i].Entry.Stamp < pp[j].Entry.Stamp
		}
		return pp[i].Seq < pp[j].Seq
	})

	res := make([]LogEntry, len(pp))
	for i, p := range pp {
		res[i] = p.Entry
	}
	return res
}

// WritableSize returns the number of bytes required to marshal the summary
func (ls *LogSummary) WritableSize() int {
	sz := 1 + 8 + xbinary.WritableUintSize(uint64(len(ls.TailByChannel))) + 8
	for ch, tail := range ls.TailByChannel {
		sz += xbinary.WritableStringSize(ch)
		sz += xbinary.WritableUintSize(uint64(len(tail)))
		for i := range tail {
			sz += 8 + tail[i].Entry.WritableSize()
		}
	}
	return sz
}

// Marshal encodes the summary as one unit: version, the per-channel tails
// with their local sequence numbers and the global Seq counter. The keys
// index is never transmitted. Returns the number of bytes written or an
// error if any.
func (ls *LogSummary) Marshal(buf []byte) (int, error) {
	nn, err := xbinary.MarshalByte(sumVersion, buf)
	if err != nil {
		return nn, err
	}

	n, err := xbinary.MarshalUint64(ls.Version, buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}
	n, err = xbinary.MarshalUint(uint(len(ls.TailByChannel)), buf[nn:])
	nn += n
	if err != nil {
		return nn, err
	}

	for ch, tail := range ls.TailByChannel {
		n, err = xbinary.MarshalString(ch, buf[nn:])
		nn += n
		if err != nil {
			return nn, err
		}
		n, err = xbinary.MarshalUint(uint(len(tail)), buf[nn:])
		nn += n
		if err != nil {
			return nn, err
		}
		for i := range tail {
			n, err = xbinary.MarshalUint64(tail[i].Seq, buf[nn:])
			nn += n
			if err != nil {
				return nn, err
			}
			n, err = tail[i].Entry.Marshal(buf[nn:])
			nn += n
			if err != nil {
				return nn, err
			}
		}
	}

	n, err = xbinary.MarshalUint64(ls.Seq, buf[nn:])
	nn += n
	return nn, err
}

// Unmarshal decodes the summary from buf. The operation is all-or-nothing:
// a malformed or truncated encoding leaves the receiver untouched and an
// error is returned. On success the keys index is rebuilt from the decoded
// tails. It returns the number of bytes read or an error if any.
func (ls *LogSummary) Unmarshal(buf []byte, newBuf bool) (int, error) {
	var res LogSummary

	nn, _, err := xbinary.UnmarshalByte(buf)
	if err != nil {
		return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed encoding")
	}

	var n int
	n, res.Version, err = xbinary.UnmarshalUint64(buf[nn:])
	nn += n
	if err != nil {
		return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed encoding")
	}

	var chans uint
	n, chans, err = xbinary.UnmarshalUint(buf[nn:])
	nn += n
	if err != nil {
		return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed encoding")
	}

	res.TailByChannel = make(map[string][]TailPair, chans)
	for i := uint(0); i < chans; i++ {
		var ch string
		n, ch, err = xbinary.UnmarshalString(buf[nn:], newBuf)
		nn += n
		if err != nil {
			return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed channel name")
		}

		var cnt uint
		n, cnt, err = xbinary.UnmarshalUint(buf[nn:])
		nn += n
		if err != nil {
			return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed tail for channel %s", ch)
		}

		tail := make([]TailPair, 0, cnt)
		for j := uint(0); j < cnt; j++ {
			var p TailPair
			n, p.Seq, err = xbinary.UnmarshalUint64(buf[nn:])
			nn += n
			if err != nil {
				return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed tail for channel %s", ch)
			}
			n, err = p.Entry.Unmarshal(buf[nn:], newBuf)
			nn += n
			if err != nil {
				return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed entry in channel %s", ch)
			}
			tail = append(tail, p)
		}
		res.TailByChannel[ch] = tail
	}

	n, res.Seq, err = xbinary.UnmarshalUint64(buf[nn:])
	nn += n
	if err != nil {
		return nn, errors.Wrapf(err, "could not unmarshal LogSummary, malformed encoding")
	}

	res.keys = make(map[LogEntryKey]struct{})
	for _, tail := range res.TailByChannel {
		for i := range tail {
			res.keys[tail[i].Entry.Key()] = struct{}{}
		}
	}

	*ls = res
	return nn, nil
}
