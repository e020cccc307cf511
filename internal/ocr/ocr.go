// Package ocr extracts text from images through the tesseract command-line
// tool.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotReady is returned when the OCR engine or its language data is missing.
var ErrNotReady = errors.New("ocr engine not ready: install tesseract and the language data first")

// Extractor turns an image into text.
type Extractor interface {
	IsReady(ctx context.Context) bool
	// ExtractText returns ok=false when the image holds no readable text.
	ExtractText(ctx context.Context, ref string) (text string, ok bool, err error)
}

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

type Tesseract struct {
	binary    string
	dataDir   string
	languages []string
	run       runFunc
}

// NewTesseract creates an extractor for binary (looked up on PATH when not
// absolute). languages are tesseract codes such as "eng" or "ukr"; dataDir
// may be empty to use tesseract's own default.
func NewTesseract(binary, dataDir string, languages []string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &Tesseract{
		binary:    binary,
		dataDir:   dataDir,
		languages: languages,
		run:       runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// IsReady reports whether the binary resolves and, with a data directory
// configured, every language has its traineddata file.
func (t *Tesseract) IsReady(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, err := exec.LookPath(t.binary); err != nil {
		return false
	}
	if t.dataDir == "" {
		return true
	}
	for _, lang := range t.languages {
		if _, err := os.Stat(filepath.Join(t.dataDir, lang+".traineddata")); err != nil {
			return false
		}
	}
	return true
}

func (t *Tesseract) ExtractText(ctx context.Context, ref string) (string, bool, error) {
	if _, err := os.Stat(ref); err != nil {
		return "", false, fmt.Errorf("failed to open image: %w", err)
	}

	args := []string{ref, "stdout", "-l", strings.Join(t.languages, "+")}
	if t.dataDir != "" {
		args = append(args, "--tessdata-dir", t.dataDir)
	}

	out, err := t.run(ctx, t.binary, args...)
	if err != nil {
		return "", false, fmt.Errorf("tesseract failed: %w", err)
	}

	text := normalize(string(out))
	return text, text != "", nil
}

// normalize trims every line and drops the form feed tesseract appends
// after each page.
func normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\f", "")
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
