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

package server

import (
	"context"

	"github.com/jrivets/log4g"
	"github.com/logrange/clog/pkg/digest"
	"github.com/logrange/clog/pkg/sink"
	"github.com/logrange/clog/pkg/storage"
	"github.com/logrange/linker"
)

// Start assembles the digest components using the configuration provided and
// runs them until ctx is closed
func Start(ctx context.Context, cfg *digest.Config) error {
	log := log4g.GetLogger("server")
	log.Info("Start with config:", cfg)

	strg, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return err
	}

	disp, err := sink.NewDispatcher(cfg.Sink, cfg.Channels)
	if err != nil {
		return err
	}

	dgst, err := digest.NewDigest(cfg)
	if err != nil {
		return err
	}

	injector := linker.New()
	injector.SetLogger(log4g.GetLogger("injector"))
	injector.Register(
		linker.Component{Name: "mainCtx", Value: ctx},
		linker.Component{Name: "", Value: strg},
		linker.Component{Name: "", Value: disp},
		linker.Component{Name: "", Value: dgst},
	)
	injector.Init(ctx)

	<-ctx.Done()
	injector.Shutdown()

	_ = disp.Close()
	return nil
}
