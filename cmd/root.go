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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal/config"
	"github.com/valpere/simtran/internal/logging"
)

var version = "0.1.0"

var (
	envFile      string
	dbPath       string
	settingsPath string
	logLevel     string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "simtran",
	Short: "Live multi-engine translator",
	Long: `A CLI translator that sends each text to a primary engine and, optionally,
to a set of simultaneous engines for side-by-side comparison.

Accepted translations are kept in a local history; language choices,
engine selection and debounce delay are remembered between runs.

Supported engines: Google Translate, MyMemory, Systran, Ollama (LLM), OpenRouter (LLM)

Use "simtran session" for interactive translation as you type.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.DBPath = dbPath
		}
		if settingsPath != "" {
			loaded.SettingsPath = settingsPath
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}

		l, err := logging.New(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Environment file to load before reading SIMTRAN_* variables")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default <data dir>/simtran.db)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default <data dir>/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
