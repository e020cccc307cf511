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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal/coordinator"
)

var (
	translateSource string
	translateTarget string
	translateImage  string
	translateAll    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text once",
	Long: `Translate text with the primary engine and print the result.

Text is taken from the arguments or, when there are none, from stdin.
With simultaneous translation enabled, the other enabled engines are
queried as well and their results are listed with --all.

Language flags are remembered for the next run.

Examples:
  simtran translate -t uk "Good morning"
  echo "Guten Morgen" | simtran translate -s de -t en
  simtran translate --image scan.png -t en`,
	RunE: runTranslate,
}

// collector keeps the notifications of a one-shot run.
type collector struct {
	mu    sync.Mutex
	notes []coordinator.Notification
}

func (c *collector) Notify(n coordinator.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, n)
}

func (c *collector) first(kind coordinator.Kind) *coordinator.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notes {
		if c.notes[i].Kind == kind {
			return &c.notes[i]
		}
	}
	return nil
}

func runTranslate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && translateImage == "" {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" && translateImage == "" {
		return fmt.Errorf("nothing to translate: pass text, pipe it on stdin or use --image")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	notes := &collector{}
	c, err := a.newCoordinator(notes, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := refreshAndWait(ctx, c); err != nil {
		logger.Warn().Err(err).Msg("Bookmarks unavailable")
	}
	if n := notes.first(coordinator.LanguagesUnavailable); n != nil {
		logger.Warn().Err(n.Err).Msg("Using language codes without engine names")
	}

	known := c.Snapshot().AvailableLanguages
	if cmd.Flags().Changed("source") {
		lang, err := languageFor(translateSource, known)
		if err != nil {
			return err
		}
		if err := c.SetSourceLanguage(lang); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("target") {
		lang, err := languageFor(translateTarget, known)
		if err != nil {
			return err
		}
		if lang.IsAuto() {
			return fmt.Errorf("target language cannot be auto")
		}
		if err := c.SetTargetLanguage(lang); err != nil {
			return err
		}
	}

	if translateImage != "" {
		if err := c.ProcessImage(translateImage); err != nil {
			return err
		}
	} else {
		c.Submit(text)
	}
	c.Wait()

	if n := notes.first(coordinator.OcrFailed); n != nil {
		return fmt.Errorf("text extraction failed: %w", n.Err)
	}
	if n := notes.first(coordinator.EngineUnreachable); n != nil {
		return fmt.Errorf("translation failed: %w", n.Err)
	}

	st := c.Snapshot()
	if st.InsertedText == "" {
		return fmt.Errorf("no text found in %s", translateImage)
	}
	if st.Source.Equal(st.Target) {
		fmt.Println(st.InsertedText)
		return nil
	}
	fmt.Println(st.Translation.TranslatedText)

	if translateAll {
		return printEngineResults(os.Stdout, st)
	}
	return nil
}

func printEngineResults(out io.Writer, st coordinator.State) error {
	names := make([]string, 0, len(st.EngineResults))
	for name, res := range st.EngineResults {
		if name != st.PrimaryEngine && !res.IsEmpty() {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ENGINE\tLATENCY\tTRANSLATION")
	for _, name := range names {
		res := st.EngineResults[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, res.Latency.Round(time.Millisecond), res.TranslatedText)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateSource, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "", "Target language code")
	translateCmd.Flags().StringVar(&translateImage, "image", "", "Extract the text to translate from an image (tesseract)")
	translateCmd.Flags().BoolVarP(&translateAll, "all", "a", false, "Also print results of simultaneous engines")
}
