/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cli implements the reasondump command.
package cli

import (
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"dirpx.dev/osreason"
)

// RootOptions holds the flags shared by every subcommand.
type RootOptions struct {
	Verbose    bool
	ConfigFile string

	logger log.Logger
}

// NewRootCommand returns the reasondump command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reasondump",
		Short: "Encode and inspect termination reason payloads",
		Long: `reasondump builds termination reason records from a YAML chunk list
and writes their framed payload, or decodes such a payload for inspection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			lvl := level.AllowInfo()
			if opts.Verbose {
				lvl = level.AllowDebug()
			}
			l := log.NewLogfmtLogger(log.NewSyncWriter(cmd.ErrOrStderr()))
			opts.logger = level.NewFilter(log.With(l, "ts", log.DefaultTimestampUTC), lvl)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML subsystem config file")

	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	return cmd
}

// Execute runs the command tree with the process arguments.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "reasondump:", err)
		os.Exit(1)
	}
}

func (o *RootOptions) config() (osreason.Config, error) {
	if o.ConfigFile == "" {
		return osreason.DefaultConfig(), nil
	}
	return osreason.LoadConfig(o.ConfigFile)
}

// Logger returns the logger set up for the running command.
func (o *RootOptions) Logger() log.Logger {
	if o.logger == nil {
		return log.NewNopLogger()
	}
	return o.logger
}
