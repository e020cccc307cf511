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
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change user preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := settings.Open(cfg.SettingsPath)
		if err != nil {
			return err
		}

		fmt.Printf("File: %s\n\n", prefs.Path())
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		for _, key := range prefs.Keys() {
			fmt.Fprintf(w, "%s\t%v\n", key, prefs.Get(key))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\nSource: %s\n", formatLanguage(prefs.SourceLanguage()))
		fmt.Printf("Target: %s\n", formatLanguage(prefs.TargetLanguage()))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a preference",
	Long: `Change a preference and save it.

Keys:
  translate_automatically   translate after the fetch delay (true/false)
  fetch_delay               debounce delay in milliseconds
  api_type                  index of the primary engine (see "simtran engines")
  simultaneous_translation  query simultaneous engines too (true/false)
  history_enabled           record accepted translations (true/false)
  skip_similar_history      skip entries already in history (true/false)

Languages are set with "simtran translate -s/-t" or in a session.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefs, err := settings.Open(cfg.SettingsPath)
		if err != nil {
			return err
		}

		key := args[0]
		if key == settings.KeySourceLanguage || key == settings.KeyTargetLanguage {
			lang, err := languageFor(args[1], nil)
			if err != nil {
				return err
			}
			if key == settings.KeySourceLanguage {
				return prefs.SetSourceLanguage(lang)
			}
			return prefs.SetTargetLanguage(lang)
		}

		prefs.Set(key, parseValue(args[1]))
		if err := prefs.Save(); err != nil {
			return err
		}
		fmt.Printf("%s = %v\n", key, prefs.Get(key))
		return nil
	},
}

// parseValue keeps booleans and numbers typed in the YAML file.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

func init() {
	rootCmd.AddCommand(settingsCmd)

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
