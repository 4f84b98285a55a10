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

// Package digest contains the authority owning one clog.LogSummary. It
// serializes all mutations behind its mutex, bumps the summary version on
// every committed change, keeps the tails bounded and forwards new entries
// to the configured sinks.
package digest

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
	"github.com/logrange/clog/pkg/clog"
	"github.com/logrange/clog/pkg/sink"
	"github.com/logrange/clog/pkg/storage"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

type (
	// Digest owns a LogSummary on behalf of the local node
	Digest struct {
		Dispatcher *sink.Dispatcher `inject:""`
		Storage    storage.Storage  `inject:""`

		cfg    *Config
		logger log4g.Logger

		lock sync.Mutex
		sum  *clog.LogSummary

		waitWg sync.WaitGroup
	}
)

const (
	storageKeyName = "digest.state"
)

//===================== digest =====================

// NewDigest creates a new Digest by the config provided
func NewDigest(cfg *Config) (*Digest, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}

	d := new(Digest)
	d.cfg = deepcopy.Copy(cfg).(*Config)
	d.sum = clog.NewLogSummary()
	d.logger = log4g.GetLogger("digest")
	return d, nil
}

// Init is part of linker.Initializer. It restores the persisted state, if
// there is one, and starts the periodic state persisting.
func (d *Digest) Init(ctx context.Context) error {
	d.logger.Info("Initializing, config=", d.cfg)
	if err := d.loadState(); err != nil {
		return err
	}
	d.runPersistState(ctx)
	return nil
}

// Shutdown is part of linker.Shutdowner
func (d *Digest) Shutdown() {
	d.waitWg.Wait()
	if err := d.persistState(); err != nil {
		d.logger.Error("Unable to persist state on shutdown, cause=", err)
	}
	d.logger.Info("Shutdown.")
}

// Ingest hands e over to the summary. It returns false when an entry with
// the same key is already retained (the duplicate is skipped), true when the
// entry was committed. A sink failure is logged and dropped, it does not
// affect the in-memory state.
func (d *Digest) Ingest(e clog.LogEntry) bool {
	d.lock.Lock()
	if d.sum.Contains(e.Key()) {
		d.lock.Unlock()
		return false
	}
	d.sum.Add(e)
	d.sum.Version++
	d.sum.Prune(d.cfg.MaxTailLen)
	d.lock.Unlock()

	if d.Dispatcher != nil {
		if err := d.Dispatcher.Dispatch(&e); err != nil {
			d.logger.Warn("Could not dispatch entry key=", e.Key(), " to the sink, err=", err)
		}
	}
	return true
}

// Merge decodes a summary received from another node and ingests every
// entry which is not known yet. It returns the number of entries added. A
// malformed encoding leaves the local state untouched.
func (d *Digest) Merge(buf []byte) (int, error) {
	var remote clog.LogSummary
	if _, err := remote.Unmarshal(buf, true); err != nil {
		return 0, errors.Wrapf(err, "could not merge remote summary")
	}

	added := 0
	for _, e := range remote.OrderedTail() {
		if d.Ingest(e) {
			added++
		}
	}
	d.logger.Debug("Merged remote summary version=", remote.Version, ", added=", added, " entries")
	return added, nil
}

// Contains reports whether the entry key is already retained. Producers and
// synchronizers use it to pre-check duplicates before sending entries here.
func (d *Digest) Contains(k clog.LogEntryKey) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.sum.Contains(k)
}

// Version returns the current summary version
func (d *Digest) Version() uint64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.sum.Version
}

// OrderedTail returns the chronologically merged tail across all channels
func (d *Digest) OrderedTail() []clog.LogEntry {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.sum.OrderedTail()
}

// EncodedSummary marshals the owned summary as one unit for handing it to a
// transport or a storage
func (d *Digest) EncodedSummary() ([]byte, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	buf := make([]byte, d.sum.WritableSize())
	n, err := d.sum.Marshal(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "could not marshal the summary")
	}
	return buf[:n], nil
}

//===================== digest.jobs =====================

func (d *Digest) runPersistState(ctx context.Context) {
	if d.cfg.StateStoreIntervalSec == 0 {
		return
	}

	d.logger.Info("Running persist state every ", d.cfg.StateStoreIntervalSec, " seconds...")
	ticker := time.NewTicker(time.Second *
		time.Duration(d.cfg.StateStoreIntervalSec))

	d.waitWg.Add(1)
	go func() {
		defer d.waitWg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				d.logger.Warn("Persist state stopped.")
				return
			case <-ticker.C:
				if err := d.persistState(); err != nil {
					d.logger.Error("Unable to persist state, cause=", err)
				}
			}
		}
	}()
}

//===================== digest.state =====================

func (d *Digest) loadState() error {
	if d.Storage == nil {
		return nil
	}

	data, err := d.Storage.ReadData(storageKeyName)
	if os.IsNotExist(err) {
		d.logger.Info("No persisted state found, starting empty.")
		return nil
	}
	if err != nil {
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	if _, err = d.sum.Unmarshal(data, true); err != nil {
		return errors.Wrapf(err, "cannot restore state from %v", d.Storage)
	}
	d.logger.Info("Loaded state (", humanize.Bytes(uint64(len(data))), "), version=", d.sum.Version)
	return nil
}

func (d *Digest) persistState() error {
	if d.Storage == nil {
		return nil
	}

	data, err := d.EncodedSummary()
	if err != nil {
		return err
	}

	err = d.Storage.WriteData(storageKeyName, data)
	if err == nil {
		d.logger.Debug("Persisted state (", humanize.Bytes(uint64(len(data))), ")")
	}
	return err
}
