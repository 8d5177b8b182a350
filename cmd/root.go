/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/valpere/subtran/internal/config"
	"github.com/valpere/subtran/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()
	cfg     *config.Config
)

// flagKeys maps command line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"target":     "target_lang",
	"source":     "source_lang",
	"output-dir": "output_dir",
	"provider":   "provider",
	"services":   "services",
	"db":         "db",
	"no-cache":   "no_cache",
	"editor":     "editor",
	"arbiter":    "arbiter",
	"refine":     "refine",
	"log-level":  "log_level",
	"log-format": "log_format",
}

var rootCmd = &cobra.Command{
	Use:   "subtran",
	Short: "Subtitle translator that keeps the original timing",
	Long: `A CLI application that translates SRT subtitles without touching their timing.

The subtitle text is cleaned, joined into sentences and handed to a
translator as one text. The translation is then distributed back over the
original entries word by word, proportionally to the source words of each
line.

Translators: manual (paste into any web translator), google, ollama.

Use "subtran srt --help" for translation options.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags()); err != nil {
			return err
		}

		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded

		return logging.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	},
}

// bindFlags binds the flags of the running command to their config keys, so
// only flags set on the command line take precedence over env and file.
func bindFlags(flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/subtran/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("db", "", "Database path for translation memory and job history")
}
