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

	"github.com/spf13/cobra"
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage bookmarked languages",
	Long: `Add, list, and remove bookmarked languages.

Bookmarked languages are listed first by "simtran languages" and shown
at the start of every session.`,
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarked languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		langs, err := db.ListBookmarks(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list bookmarks: %w", err)
		}

		if len(langs) == 0 {
			fmt.Println("No bookmarked languages.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME")
		for _, l := range langs {
			fmt.Fprintf(w, "%s\t%s\n", l.Code, l.Name)
		}
		return w.Flush()
	},
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <code> [name]",
	Short: "Bookmark a language",
	Long: `Bookmark a language by code. Without a name, the English name of the
language is used.

Example:
  simtran bookmark add uk
  simtran bookmark add pt-BR "Brazilian Portuguese"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := languageFor(args[0], nil)
		if err != nil {
			return err
		}
		if lang.IsAuto() {
			return fmt.Errorf("auto-detection cannot be bookmarked")
		}
		if len(args) == 2 {
			lang.Name = args[1]
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.AddBookmark(context.Background(), lang); err != nil {
			return fmt.Errorf("failed to add bookmark: %w", err)
		}
		fmt.Printf("Bookmarked: %s\n", formatLanguage(lang))
		return nil
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "remove <code>",
	Short: "Remove a bookmarked language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.RemoveBookmark(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to remove bookmark: %w", err)
		}
		fmt.Printf("Removed bookmark: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bookmarkCmd)

	bookmarkCmd.AddCommand(bookmarkListCmd)
	bookmarkCmd.AddCommand(bookmarkAddCmd)
	bookmarkCmd.AddCommand(bookmarkRemoveCmd)
}
