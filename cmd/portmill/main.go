// Copyright 2025 the portmill authors
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
	"os"

	"github.com/portmill/portmill/cmd/portmill/commands"
	"github.com/portmill/portmill/cmd/portmill/opts"
	"github.com/portmill/portmill/pkg/config"
	"github.com/portmill/portmill/pkg/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
)

func main() {
	ro := &opts.RootOpts{}

	root := &cobra.Command{
		Use:           "portmill",
		Short:         "Convert mobile app source trees between platforms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Set up logging
			logLevel := zerolog.InfoLevel
			if debug {
				logLevel = zerolog.DebugLevel
			}
			logger := zerolog.New(os.Stderr).Level(logLevel).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))

			// Load config
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			ro.Config = cfg
			ro.Logger = log.New(os.Stdout, logLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml or .hcl)")
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	root.AddCommand(commands.NewConvertCmd(ro))
	root.AddCommand(commands.NewPlatformsCmd(ro))
	root.AddCommand(commands.NewGCCmd(ro))

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger := zerolog.New(os.Stderr)
		logger.Fatal().Err(err).Msg("command failed")
	}
}

// loadConfig loads the config file when one is given or discoverable,
// falling back to the compiled-in defaults
func loadConfig(ctx context.Context) (*config.Config, error) {
	if configFile != "" {
		return config.Load(ctx, configFile)
	}
	for _, candidate := range []string{".portmill.yaml", ".portmill.hcl"} {
		if _, err := os.Stat(candidate); err == nil {
			return config.Load(ctx, candidate)
		}
	}
	return config.DefaultConfig(), nil
}
