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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal"
)

var languagesEngine string

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List the languages of the primary engine",
	Long: `Fetch and list the languages supported by the primary engine, or by the
engine given with --engine. Bookmarked languages are marked with "*" and
listed first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		engine := a.primary()
		if languagesEngine != "" {
			if engine, err = a.registry.Engine(languagesEngine); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		langs, err := a.catalog.Fetch(ctx, engine)
		if err != nil {
			return err
		}
		bookmarks, err := a.store.ListBookmarks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list bookmarks: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, " \tCODE\tNAME")
		for _, l := range orderByBookmarks(langs, bookmarks) {
			mark := " "
			if isBookmarked(l, bookmarks) {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark, l.Code, l.Name)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d languages from %s\n", len(langs), engine.Name())
		return nil
	},
}

func isBookmarked(l internal.Language, bookmarks []internal.Language) bool {
	for _, b := range bookmarks {
		if b.Equal(l) {
			return true
		}
	}
	return false
}

// orderByBookmarks moves bookmarked languages to the front, keeping the
// engine's order otherwise.
func orderByBookmarks(langs, bookmarks []internal.Language) []internal.Language {
	out := make([]internal.Language, 0, len(langs))
	for _, l := range langs {
		if isBookmarked(l, bookmarks) {
			out = append(out, l)
		}
	}
	for _, l := range langs {
		if !isBookmarked(l, bookmarks) {
			out = append(out, l)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesCmd.Flags().StringVarP(&languagesEngine, "engine", "e", "", "Engine to query instead of the primary one")
}
