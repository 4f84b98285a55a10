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

// Package storage contains a tiny key-value state store used for persisting
// encoded log summaries between runs.
package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrivets/log4g"
	"github.com/logrange/clog/pkg/utils"
)

type (
	// Storage allows to read and write serialized data by a key
	Storage interface {
		ReadData(key string) ([]byte, error)
		WriteData(key string, val []byte) error
	}

	// Config defines the storage settings
	Config struct {
		Type     Type
		Location string
	}

	Type string

	inmemStorage struct {
		lock sync.Mutex
		m    map[string][]byte
	}

	fileStorage struct {
		location string
		logger   log4g.Logger
	}
)

const (
	TypeFile  Type = "file"
	TypeInMem Type = "inmem"
)

//===================== storage =====================

// NewStorage builds a storage by the config provided
func NewStorage(cfg *Config) (Storage, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config; %v", err)
	}
	switch cfg.Type {
	case TypeFile:
		return newFileStorage(cfg.Location)
	case TypeInMem:
		return NewInMemStorage(), nil
	}
	return nil, fmt.Errorf("unknown storage type=%v", cfg.Type)
}

func NewDefaultConfig() *Config {
	return &Config{Type: TypeInMem}
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.Type != "" {
		c.Type = other.Type
	}
	if other.Location != "" {
		c.Location = other.Location
	}
}

func (c *Config) Check() error {
	if c.Type != TypeFile && c.Type != TypeInMem {
		return fmt.Errorf("unknown Type=%v", c.Type)
	}
	if c.Type == TypeFile && c.Location == "" {
		return fmt.Errorf("Location must be non-empty for Type=%v", TypeFile)
	}
	return nil
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}

//===================== inmemStorage =====================

// NewInMemStorage returns a Storage which keeps the data in the process
// memory only. Handy for tests and as a default.
func NewInMemStorage() Storage {
	return &inmemStorage{m: make(map[string][]byte)}
}

func (ms *inmemStorage) ReadData(key string) ([]byte, error) {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	v, ok := ms.m[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	buf := make([]byte, len(v))
	copy(buf, v)
	return buf, nil
}

func (ms *inmemStorage) WriteData(key string, val []byte) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)
	ms.m[key] = buf
	return nil
}

func (ms *inmemStorage) String() string {
	return "[inmem]"
}

//===================== fileStorage =====================

func newFileStorage(location string) (Storage, error) {
	if err := os.MkdirAll(location, 0740); err != nil {
		return nil, err
	}
	logger := log4g.GetLogger("storage").WithId("[file]").(log4g.Logger)
	return &fileStorage{location: location, logger: logger}, nil
}

func (fs *fileStorage) ReadData(key string) ([]byte, error) {
	data, err := ioutil.ReadFile(fs.filePath(key))
	if os.IsNotExist(err) {
		return nil, os.ErrNotExist
	}
	if err == nil {
		fs.logger.Debug("Read key=", key, " (", len(data), " bytes)")
	}
	return data, err
}

func (fs *fileStorage) WriteData(key string, val []byte) error {
	err := ioutil.WriteFile(fs.filePath(key), val, 0640)
	if err == nil {
		fs.logger.Debug("Wrote key=", key, " (", len(val), " bytes)")
	}
	return err
}

func (fs *fileStorage) filePath(key string) string {
	return filepath.Join(fs.location, key)
}

func (fs *fileStorage) String() string {
	return fmt.Sprintf("[file: location=%v]", fs.location)
}
