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

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/jrivets/log4g"
	"github.com/logrange/clog/cmd"
	"github.com/logrange/clog/pkg/digest"
	"github.com/logrange/clog/pkg/storage"
	"github.com/logrange/clog/server"
	"gopkg.in/urfave/cli.v2"
)

const (
	Version = "0.1.0"
)

const (
	argStartCfgFile    = "config-file"
	argStartLogCfgFile = "log-config-file"
	argStartStorageDir = "storage-dir"
	argPidFile         = "pid-file"
)

func main() {
	defer log4g.Shutdown()
	app := &cli.App{
		Name:    "clogd",
		Version: Version,
		Usage:   "Cluster Log Digest daemon",
		Commands: []*cli.Command{
			{
				Name:   "start",
				Usage:  "Run clogd",
				Action: runDigest,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argStartLogCfgFile,
						Usage: "log4g configuration file path",
					},
					&cli.StringFlag{
						Name:  argStartCfgFile,
						Usage: "clogd configuration file path",
					},
					&cli.StringFlag{
						Name:  argStartStorageDir,
						Usage: "clogd storage directory",
					},
					&cli.StringFlag{
						Name:  argPidFile,
						Usage: "clogd pid file path",
						Value: "/tmp/clogd.pid",
					},
				},
			},
			{
				Name:   "stop",
				Usage:  "Stop clogd",
				Action: stopDigest,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argPidFile,
						Usage: "clogd pid file path",
						Value: "/tmp/clogd.pid",
					},
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	if err := app.Run(os.Args); err != nil {
		getLogger().Fatal("Failed to run clogd, cause: ", err)
	}
}

func runDigest(c *cli.Context) error {
	logCfgFile := c.String(argStartLogCfgFile)
	if logCfgFile != "" {
		err := log4g.ConfigF(logCfgFile)
		if err != nil {
			return err
		}
	}

	logger := getLogger()
	cfg := digest.NewDefaultConfig()

	cfgFile := c.String(argStartCfgFile)
	if cfgFile != "" {
		logger.Info("Loading clogd config from=", cfgFile)
		config, err := digest.LoadCfgFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg.Apply(config)
	}
	applyArgsToCfg(c, cfg)

	pf := cmd.NewPidFile(c.String(argPidFile))
	if !pf.Lock() {
		return fmt.Errorf("could not lock pid file %s, already running?", c.String(argPidFile))
	}
	defer pf.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cmd.NewNotifierOnIntTermSignal(func(s os.Signal) {
		logger.Warn("Handling signal=", s)
		cancel()
	})
	return server.Start(ctx, cfg)
}

func stopDigest(c *cli.Context) error {
	return cmd.NewPidFile(c.String(argPidFile)).Interrupt()
}

func applyArgsToCfg(c *cli.Context, cfg *digest.Config) {
	if sd := c.String(argStartStorageDir); sd != "" {
		cfg.Storage.Type = storage.TypeFile
		cfg.Storage.Location = sd
	}
}

func getLogger() log4g.Logger {
	return log4g.GetLogger("clogd")
}
