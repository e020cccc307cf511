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

	"github.com/valpere/simtran/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the translation history",
	Long:  `List, inspect, and clear the translations accepted from the primary engine.`,
}

func openStore() (*store.Store, error) {
	db, err := store.NewWithDir(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.ListHistory(context.Background(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("History is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tTARGET\tTEXT\tTRANSLATION")
		for _, it := range items {
			source := it.SourceLanguageCode
			if source == "" {
				source = "auto"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				it.ID, it.CreatedAt.Format("2006-01-02 15:04"),
				source, it.TargetLanguageCode,
				snippet(it.InsertedText, 40), snippet(it.TranslatedText, 40))
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.HistoryStats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total entries:  %d\n", stats.TotalEntries)
		fmt.Printf("Language pairs: %d\n", stats.LanguagePairs)
		fmt.Printf("Distinct texts: %d\n", stats.DistinctTexts)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a history entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteHistory(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Printf("Deleted entry: %s\n", args[0])
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearHistory(context.Background())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Printf("Cleared %d entries from history.\n", n)
		return nil
	},
}

func snippet(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of entries (0 = all)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
