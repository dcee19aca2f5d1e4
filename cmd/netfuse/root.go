package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/katalvlaran/netfuse/config"
	"github.com/katalvlaran/netfuse/observability"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *zap.Logger
	bindings map[*pflag.FlagSet]map[string]string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), bindings: make(map[*pflag.FlagSet]map[string]string)}

	root := &cobra.Command{
		Use:           "netfuse",
		Short:         "Infer networks with several methods and fuse them into a consensus.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			for c := cmd; c != nil; c = c.Parent() {
				a.apply(c.LocalFlags())
			}

			return a.initialize()
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./netfuse.yaml when present)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	a.bind(root.PersistentFlags(), map[string]string{"log-level": "logger.level"})

	root.AddCommand(newInferCmd(a), newCombineCmd(a), newMethodsCmd(a))

	return root
}

// bind records which config key each flag of fs sets. Only the flags of the
// command being run are bound, so subcommands may share keys.
func (a *app) bind(fs *pflag.FlagSet, keys map[string]string) {
	a.bindings[fs] = keys
}

func (a *app) apply(local *pflag.FlagSet) {
	for fs, keys := range a.bindings {
		for flag, key := range keys {
			f := local.Lookup(flag)
			if f == nil || fs.Lookup(flag) != f {
				continue
			}
			_ = a.v.BindPFlag(key, f)
		}
	}
}

// initialize reads defaults, the config file and NETFUSE_* variables, then
// validates the result and starts the logger.
func (a *app) initialize() error {
	config.SetDefaults(a.v)
	config.BindEnv(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("netfuse")
		a.v.SetConfigType("yaml")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	a.logger.Debug("configuration loaded", zap.String("version", Version), zap.String("config_file", a.v.ConfigFileUsed()))

	return nil
}
