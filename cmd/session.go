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
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/valpere/simtran/internal/coordinator"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Translate interactively as you type",
	Long: `Start an interactive session. Every line replaces the input; with automatic
translation enabled it is translated once the input has been stable for the
configured fetch delay.

Commands:
  :now            translate the current input immediately
  :clear          clear input and translation
  :refresh        reload engine selection, languages and bookmarks
  :swap           swap source and target languages
  :source <code>  set the source language ("auto" to detect)
  :target <code>  set the target language
  :image <path>   translate the text found in an image
  :state          show languages, engines and the last results
  :quit           leave the session`,
	RunE: runSession,
}

// sessionPrinter writes committed translations and shadow results as they
// arrive. It only prints what changed since the previous state.
type sessionPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	last    string
	results map[string]string
}

func newSessionPrinter(out io.Writer) *sessionPrinter {
	return &sessionPrinter{out: out, results: map[string]string{}}
}

func (p *sessionPrinter) update(s coordinator.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !s.Translating && s.Translation.TranslatedText != p.last {
		p.last = s.Translation.TranslatedText
		if p.last != "" {
			fmt.Fprintf(p.out, "→ %s\n", p.last)
		}
	}

	for name, res := range s.EngineResults {
		if name == s.PrimaryEngine {
			continue
		}
		if res.TranslatedText == p.results[name] {
			continue
		}
		p.results[name] = res.TranslatedText
		if res.TranslatedText != "" {
			fmt.Fprintf(p.out, "  [%s] %s\n", name, res.TranslatedText)
		}
	}
}

func (p *sessionPrinter) Notify(n coordinator.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch n.Kind {
	case coordinator.EngineUnreachable:
		fmt.Fprintf(p.out, "! %s is unreachable: %v\n", n.Engine, n.Err)
	case coordinator.LanguagesUnavailable:
		fmt.Fprintf(p.out, "! could not load languages from %s\n", n.Engine)
	case coordinator.OcrNotReady:
		fmt.Fprintln(p.out, "! OCR is not ready: install tesseract and the language data first")
	case coordinator.OcrFailed:
		fmt.Fprintf(p.out, "! text extraction failed: %v\n", n.Err)
	default:
		fmt.Fprintf(p.out, "! %s\n", n)
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	printer := newSessionPrinter(os.Stdout)
	c, err := a.newCoordinator(printer, printer.update)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := refreshAndWait(ctx, c); err != nil {
		logger.Warn().Err(err).Msg("Refresh failed")
	}
	printState(os.Stdout, c.Snapshot())
	if !a.settings.AutoTranslate() {
		fmt.Println("Automatic translation is off; use :now to translate.")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, ":") {
			c.SetInput(line)
			continue
		}
		quit, err := sessionCommand(ctx, c, line)
		if err != nil {
			fmt.Fprintf(os.Stdout, "! %v\n", err)
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

func sessionCommand(ctx context.Context, c *coordinator.Coordinator, line string) (bool, error) {
	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return false, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, ":"), fields[0]))

	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "now":
		c.TranslateNow()
	case "clear":
		c.Clear()
	case "refresh":
		if err := refreshAndWait(ctx, c); err != nil {
			return false, err
		}
		printState(os.Stdout, c.Snapshot())
	case "swap":
		if err := c.SwapLanguages(); err != nil {
			return false, err
		}
		printState(os.Stdout, c.Snapshot())
		c.TranslateNow()
	case "source", "target":
		lang, err := languageFor(arg, c.Snapshot().AvailableLanguages)
		if err != nil {
			return false, err
		}
		if fields[0] == "source" {
			err = c.SetSourceLanguage(lang)
		} else if lang.IsAuto() {
			err = fmt.Errorf("target language cannot be auto")
		} else {
			err = c.SetTargetLanguage(lang)
		}
		if err != nil {
			return false, err
		}
		c.TranslateNow()
	case "image":
		if arg == "" {
			return false, fmt.Errorf("usage: :image <path>")
		}
		return false, c.ProcessImage(arg)
	case "state":
		printState(os.Stdout, c.Snapshot())
	default:
		return false, fmt.Errorf("unknown command :%s", fields[0])
	}
	return false, nil
}

func printState(out io.Writer, s coordinator.State) {
	fmt.Fprintf(out, "%s → %s via %s", formatLanguage(s.Source), formatLanguage(s.Target), s.PrimaryEngine)
	if s.SimEnabled && len(s.EnabledShadows) > 0 {
		fmt.Fprintf(out, " (+ %s)", strings.Join(s.EnabledShadows, ", "))
	}
	fmt.Fprintln(out)

	if len(s.BookmarkedLanguages) > 0 {
		codes := make([]string, 0, len(s.BookmarkedLanguages))
		for _, l := range s.BookmarkedLanguages {
			codes = append(codes, l.Code)
		}
		fmt.Fprintf(out, "Bookmarks: %s\n", strings.Join(codes, " "))
	}
	if s.Translating {
		fmt.Fprintln(out, "Translating…")
	} else if !s.Translation.IsEmpty() {
		fmt.Fprintf(out, "Last: %s\n", snippet(s.Translation.TranslatedText, 60))
	}
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}
