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
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal/settings"
)

var enginesCheck bool

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List and select translation engines",
	Long: `List the configured engines in registration order. The primary engine is
marked with "*"; "sim" marks engines used for simultaneous translation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engines := a.registry.Engines()
		status := make([]string, len(engines))
		if enginesCheck {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			var wg conc.WaitGroup
			for i, e := range engines {
				wg.Go(func() {
					if err := e.IsAvailable(ctx); err != nil {
						status[i] = "unavailable: " + err.Error()
						return
					}
					status[i] = "ok"
				})
			}
			wg.Wait()
		}

		primary := a.primary().Name()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, " \tINDEX\tENGINE\tSIMULTANEOUS\tSTATUS")
		for i, e := range engines {
			mark := " "
			if e.Name() == primary {
				mark = "*"
			}
			sim := ""
			if e.IsSimultaneousEnabled() {
				sim = "sim"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", mark, i, e.Name(), sim, status[i])
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !a.settings.SimultaneousTranslation() {
			fmt.Println("\nSimultaneous translation is off (simtran settings set simultaneous_translation true).")
		}
		return nil
	},
}

var enginesUseCmd = &cobra.Command{
	Use:   "use <engine>",
	Short: "Select the primary engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.registry.Engine(args[0])
		if err != nil {
			return err
		}
		for i, name := range a.registry.Names() {
			if name == engine.Name() {
				a.settings.Set(settings.KeyEngineIndex, i)
				break
			}
		}
		if err := a.settings.Save(); err != nil {
			return err
		}
		fmt.Printf("Primary engine: %s\n", engine.Name())
		return nil
	},
}

var enginesSimCmd = &cobra.Command{
	Use:   "sim <engine> <on|off>",
	Short: "Enable or disable an engine for simultaneous translation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseSwitch(args[1])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine, err := a.registry.Engine(args[0])
		if err != nil {
			return err
		}
		a.settings.SetEngineSimultaneous(engine.Name(), enabled)
		if err := a.settings.Save(); err != nil {
			return err
		}
		fmt.Printf("Simultaneous translation with %s: %s\n", engine.Name(), args[1])
		return nil
	},
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "yes", "enable", "enabled":
		return true, nil
	case "off", "no", "disable", "disabled":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", raw)
	}
	return b, nil
}

func init() {
	rootCmd.AddCommand(enginesCmd)

	enginesCmd.Flags().BoolVar(&enginesCheck, "check", false, "Check whether each engine is reachable")

	enginesCmd.AddCommand(enginesUseCmd)
	enginesCmd.AddCommand(enginesSimCmd)
}
