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

package digest

import (
	"testing"

	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/storage"
	"github.com/stretchr/testify/assert"
)

func newTestDigest(t *testing.T, maxTail int) *Digest {
	cfg := NewDefaultConfig()
	cfg.MaxTailLen = maxTail
	cfg.StateStoreIntervalSec = 0
	d, err := NewDigest(cfg)
	if err != nil {
		t.Fatal("could not create digest, err=", err)
	}
	d.Storage = storage.NewInMemStorage()
	return d
}

func testEntry(rank string, stamp, seq uint64, channel string) clog.LogEntry {
	return clog.LogEntry{Name: rank, Rank: rank, Stamp: stamp, Seq: seq,
		Sev: clog.Info, Msg: "msg", Channel: channel}
}

func TestIngestDedup(t *testing.T) {
	d := newTestDigest(t, 100)

	e := testEntry("mon.0", 10, 1, clog.ChannelCluster)
	assert.True(t, d.Ingest(e))
	assert.Equal(t, uint64(1), d.Version())
	assert.True(t, d.Contains(e.Key()))

	// the same key again is skipped, the version stays
	assert.False(t, d.Ingest(e))
	assert.Equal(t, uint64(1), d.Version())
}

func TestIngestPrunes(t *testing.T) {
	d := newTestDigest(t, 2)
	for i := uint64(1); i <= 5; i++ {
		assert.True(t, d.Ingest(testEntry("mon.0", i, i, clog.ChannelCluster)))
	}

	tail := d.OrderedTail()
	assert.Equal(t, 2, len(tail))
	assert.Equal(t, uint64(4), tail[0].Seq)
	assert.Equal(t, uint64(5), tail[1].Seq)
	assert.False(t, d.Contains(clog.NewLogEntryKey("mon.0", 1, 1)))
}

func TestMerge(t *testing.T) {
	d1 := newTestDigest(t, 100)
	d2 := newTestDigest(t, 100)

	d1.Ingest(testEntry("mon.0", 10, 1, clog.ChannelCluster))
	d1.Ingest(testEntry("mon.0", 20, 2, clog.ChannelCluster))
	d2.Ingest(testEntry("mon.0", 20, 2, clog.ChannelCluster)) // already known
	d2.Ingest(testEntry("osd.3", 30, 1, clog.ChannelAudit))

	buf, err := d1.EncodedSummary()
	assert.NoError(t, err)

	added, err := d2.Merge(buf)
	assert.NoError(t, err)
	assert.Equal(t, 1, added)

	assert.True(t, d2.Contains(clog.NewLogEntryKey("mon.0", 10, 1)))
	assert.Equal(t, 3, len(d2.OrderedTail()))
}

func TestMergeMalformed(t *testing.T) {
	d := newTestDigest(t, 100)
	d.Ingest(testEntry("mon.0", 10, 1, clog.ChannelCluster))

	_, err := d.Merge([]byte{0x20, 1, 2})
	assert.Error(t, err)

	// the local state is untouched
	assert.Equal(t, uint64(1), d.Version())
	assert.Equal(t, 1, len(d.OrderedTail()))
}

func TestPersistAndRestore(t *testing.T) {
	strg := storage.NewInMemStorage()

	d := newTestDigest(t, 100)
	d.Storage = strg
	d.Ingest(testEntry("mon.0", 10, 1, clog.ChannelCluster))
	d.Ingest(testEntry("osd.1", 20, 1, clog.ChannelAudit))
	assert.NoError(t, d.persistState())

	d2 := newTestDigest(t, 100)
	d2.Storage = strg
	assert.NoError(t, d2.loadState())

	assert.Equal(t, d.Version(), d2.Version())
	assert.True(t, d2.Contains(clog.NewLogEntryKey("mon.0", 10, 1)))
	assert.True(t, d2.Contains(clog.NewLogEntryKey("osd.1", 20, 1)))
	assert.Equal(t, 2, len(d2.OrderedTail()))
}

func TestConfigCheck(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.NoError(t, cfg.Check())

	cfg.MaxTailLen = 0
	assert.Error(t, cfg.Check())

	cfg = NewDefaultConfig()
	cfg.Sink = nil
	assert.Error(t, cfg.Check())
}
