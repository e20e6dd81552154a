package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-partials"
)

const (
	configName   = ".partials"
	envPrefix    = "PARTIALS"
	configEnvKey = "PARTIALS_CONFIG_FILE"
)

// app holds the state shared by the sub-commands. Tests append moduleOpts to
// run against in-memory filesystems.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        partials.Config
	moduleOpts []partials.Option
}

func newApp() *app {
	return &app{v: viper.New()}
}

func (a *app) rootCmd() *cobra.Command {
	defaults := partials.DefaultConfig()

	root := &cobra.Command{
		Use:   "partials",
		Short: "Expand and lint partial inclusions in documentation pages",
		Long: `partials expands (!path k="v"!) directives in Markdown and MDX pages,
retargets the relative links of the included content and reports
inclusion problems.

  partials lint [dir]               report diagnostics
  partials resolve [dir] --out dir  write resolved pages
  partials watch [dir]              re-run on every change
  partials version-of <path>...     show how page paths are classified
  partials runs list                show stored lint runs`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.loadConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./.partials.yml, can also use "+configEnvKey+")")
	flags.String("project-root", defaults.ProjectRoot, "directory the content layout is relative to")
	flags.String("latest-version", defaults.LatestVersion, "version reported for pages in the docs directory")
	flags.String("log-level", defaults.Logging.Level, "log level (trace, debug, info, warn, error)")
	flags.String("log-provider", defaults.Logging.Provider, "logging provider (console, gologger)")

	a.bind(flags, "project_root", "project-root")
	a.bind(flags, "latest_version", "latest-version")
	a.bind(flags, "logging.level", "log-level")
	a.bind(flags, "logging.provider", "log-provider")

	root.AddCommand(
		a.lintCmd(),
		a.resolveCmd(),
		a.watchCmd(),
		a.versionOfCmd(),
		a.runsCmd(),
	)
	return root
}

func (a *app) bind(flags *pflag.FlagSet, key, name string) {
	if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
		panic(fmt.Sprintf("partials: bind flag %s: %v", name, err))
	}
}

// loadConfig layers defaults, the config file, PARTIALS_* variables and
// flags, in increasing priority, into a.cfg.
func (a *app) loadConfig() error {
	defaults, err := yaml.Marshal(partials.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}
	a.v.SetConfigType("yaml")
	if err := a.v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return fmt.Errorf("load default config: %w", err)
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	file := a.configFile
	if file == "" {
		file = os.Getenv(configEnvKey)
	}
	if file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.MergeInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		a.v.SetConfigName(configName)
		a.v.AddConfigPath(".")
		if err := a.v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg partials.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	a.cfg = cfg
	return nil
}

// module builds the runtime from the loaded configuration. The mode flags
// of each sub-command are applied by mutate before validation.
func (a *app) module(mutate func(*partials.Config)) (*partials.Module, error) {
	cfg := a.cfg
	if mutate != nil {
		mutate(&cfg)
	}
	return partials.New(cfg, a.moduleOpts...)
}

// directory returns the content directory argument, defaulting to the
// configured docs directory.
func (a *app) directory(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return a.cfg.Layout.DocsDir
}
