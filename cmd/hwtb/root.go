// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/internal/config"
	"github.com/db47h/hwtb/scenario"
)

// options holds the command line flags.
type options struct {
	configPath string // YAML configuration file
	seed       int64  // seed for random stimulus
	tracePath  string // VCD output file
	logLevel   string // log verbosity level
	workers    int    // simulation engine workers
}

// loadConfig reads the configuration file if any and applies command line
// overrides.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("trace") {
		cfg.Trace = o.tracePath
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func (o *options) setLogLevel() error {
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return errors.Errorf("invalid log level: %s", o.logLevel)
	}
	logrus.SetLevel(level)
	return nil
}

// suiteTrace returns the trace file of a suite. When several suites are run,
// the suite name is appended to the file name.
func suiteTrace(path, suite string, many bool) string {
	if path == "" || !many {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + suite + ext
}

// splitArgs splits args at "--" into suite names and passthrough arguments.
func splitArgs(dash int, args []string) (names, passthrough []string) {
	if dash >= 0 && dash <= len(args) {
		return args[:dash], args[dash:]
	}
	return args, nil
}

// newRunCmd returns the command that runs test suites.
func newRunCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <fifo|asyncfifo|sdram|all>... [-- args]",
		Short: "Run test suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.setLogLevel(); err != nil {
				return err
			}
			names, passthrough := splitArgs(cmd.ArgsLenAtDash(), args)
			if len(names) == 0 {
				return errors.New("no suite given")
			}
			if len(names) == 1 && names[0] == "all" {
				names = scenario.SuiteNames()
			}
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			ctx := hwtb.NewContext(
				hwtb.WithArgs(passthrough...),
				hwtb.WithTimeScale(cfg.TimeScale),
				hwtb.WithTracing(cfg.Trace != ""))
			defer ctx.Close()

			for _, name := range names {
				s, err := scenario.NewSuite(name, cfg)
				if err != nil {
					return err
				}
				ctx.Log.Infof("suite %s: %d scenarios", name, len(s.Scenarios))
				if err = s.Run(ctx, suiteTrace(cfg.Trace, name, len(names) > 1)); err != nil {
					ctx.Log.WithError(err).Errorf("suite %s failed", name)
					return err
				}
				ctx.Log.Infof("suite %s passed", name)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&o.seed, "seed", 1, "Seed for random stimulus")
	cmd.Flags().StringVar(&o.tracePath, "trace", "", "VCD trace file")
	cmd.Flags().StringVar(&o.logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	return cmd
}

// newListCmd returns the command that lists test suites and their scenarios.
func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List test suites and scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig(cmd)
			if err != nil {
				return err
			}
			for _, name := range scenario.SuiteNames() {
				s, err := scenario.NewSuite(name, cfg)
				if err != nil {
					return err
				}
				s.Device.Close()
				ss := make([]string, len(s.Scenarios))
				for i := range s.Scenarios {
					ss[i] = s.Scenarios[i].Name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, strings.Join(ss, ", "))
			}
			return nil
		},
	}
}

// newRootCmd returns the base command for the CLI.
func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "hwtb",
		Short: "Cycle stepping test bench for clocked hardware models",
	}
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().IntVar(&o.workers, "workers", 1, "Number of simulation engine workers")

	cmd.AddCommand(newRunCmd(o))
	cmd.AddCommand(newListCmd(o))
	return cmd
}

// Execute runs the CLI root command
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
