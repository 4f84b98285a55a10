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
	"hash/fnv"
)

type (
	// LogEntryKey identifies a log entry by the producer rank, the emission
	// timestamp (nanoseconds) and the producer-local sequence number. Keys
	// are immutable after construction, cheap to copy and usable as map keys.
	// Always build them with NewLogEntryKey, so the cached hash is set.
	LogEntryKey struct {
		Rank  string
		Stamp uint64
		Seq   uint64

		hash uint64
	}
)

// NewLogEntryKey builds a key and computes its hash once. The hash is
// seq + fnv64a(rank); the timestamp is left out on purpose: Seq is
// monotonically increasing per producer, so one producer never emits two
// entries with the same (Rank, Seq). The hash argument breaks if sequence
// numbers are ever reused within a producer.
func NewLogEntryKey(rank string, stamp uint64, seq uint64) LogEntryKey {
	h := fnv.New64a()
	_, _ = h.Write([]byte(rank))
	return LogEntryKey{Rank: rank, Stamp: stamp, Seq: seq, hash: seq + h.Sum64()}
}

// Equals compares all three identity fields. The timestamp is compared
// exactly, not rounded.
func (k LogEntryKey) Equals(other LogEntryKey) bool {
	return k.Rank == other.Rank && k.Stamp == other.Stamp && k.Seq == other.Seq
}

// Hash returns the value computed at construction. Equal keys always have
// equal hashes, unequal keys may collide.
func (k LogEntryKey) Hash() uint64 {
	return k.hash
}

func (k LogEntryKey) String() string {
	return fmt.Sprintf("{rank=%s, stamp=%d, seq=%d}", k.Rank, k.Stamp, k.Seq)
}
