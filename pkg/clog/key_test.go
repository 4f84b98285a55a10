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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEquality(t *testing.T) {
	k := NewLogEntryKey("osd.12", 1000, 5)

	assert.True(t, k.Equals(NewLogEntryKey("osd.12", 1000, 5)))
	assert.False(t, k.Equals(NewLogEntryKey("osd.13", 1000, 5)))
	assert.False(t, k.Equals(NewLogEntryKey("osd.12", 1001, 5)))
	assert.False(t, k.Equals(NewLogEntryKey("osd.12", 1000, 6)))
}

func TestKeyHash(t *testing.T) {
	k1 := NewLogEntryKey("mon.a", 123456789, 42)
	k2 := NewLogEntryKey("mon.a", 123456789, 42)
	if k1.Hash() != k2.Hash() {
		t.Fatal("equal keys must have equal hashes: ", k1.Hash(), " vs ", k2.Hash())
	}

	// the timestamp does not participate in the hash
	k3 := NewLogEntryKey("mon.a", 987654321, 42)
	if k1.Hash() != k3.Hash() {
		t.Fatal("hash must not depend on the timestamp")
	}

	if k1.Hash() == NewLogEntryKey("mon.a", 123456789, 43).Hash() {
		t.Fatal("different seq must change the hash")
	}
}

func TestKeyAsMapKey(t *testing.T) {
	m := map[LogEntryKey]struct{}{}
	m[NewLogEntryKey("mon.a", 1, 1)] = struct{}{}
	m[NewLogEntryKey("mon.a", 1, 1)] = struct{}{}
	m[NewLogEntryKey("mon.b", 1, 1)] = struct{}{}

	assert.Equal(t, 2, len(m))
	_, ok := m[NewLogEntryKey("mon.a", 1, 1)]
	assert.True(t, ok)
}
