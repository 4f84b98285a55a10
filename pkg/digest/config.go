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
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/logrange/clog/pkg/sink"
	"github.com/logrange/clog/pkg/storage"
	"github.com/logrange/clog/pkg/utils"
)

type (
	// Config struct contains the digest service configuration
	Config struct {
		// MaxTailLen bounds every channel tail of the summary
		MaxTailLen int

		// Channels maps channel names to emission rules, the "default" key
		// holds the fallback rule
		Channels sink.RulesConfig

		// Sink describes where entries of enabled channels are emitted
		Sink *sink.Config

		// Storage is the place where the digest state could be stored
		Storage *storage.Config

		// StateStoreIntervalSec defines how often the state is persisted,
		// 0 turns the periodic persisting off
		StateStoreIntervalSec int
	}
)

func NewDefaultConfig() *Config {
	return &Config{
		MaxTailLen:            500,
		Channels:              sink.RulesConfig{},
		Sink:                  &sink.Config{Type: sink.SnkTypeStdout},
		Storage:               storage.NewDefaultConfig(),
		StateStoreIntervalSec: 60,
	}
}

// LoadCfgFromFile reads the config from a json file
func LoadCfgFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err = json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Apply(other *Config) {
	if other == nil {
		return
	}
	if other.MaxTailLen > 0 {
		c.MaxTailLen = other.MaxTailLen
	}
	if other.Channels != nil {
		c.Channels = other.Channels
	}
	if other.Sink != nil {
		c.Sink = other.Sink
	}
	if other.StateStoreIntervalSec > 0 {
		c.StateStoreIntervalSec = other.StateStoreIntervalSec
	}
	c.Storage.Apply(other.Storage)
}

func (c *Config) Check() error {
	if c.MaxTailLen <= 0 {
		return fmt.Errorf("MaxTailLen=%v, must be > 0", c.MaxTailLen)
	}
	if c.Sink == nil {
		return fmt.Errorf("Sink must be set")
	}
	if c.StateStoreIntervalSec < 0 {
		return fmt.Errorf("StateStoreIntervalSec=%v, must be >= 0", c.StateStoreIntervalSec)
	}
	return c.Storage.Check()
}

func (c *Config) String() string {
	return utils.ToJsonStr(c)
}
