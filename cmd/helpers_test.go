package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/valpere/simtran/internal"
	"github.com/valpere/simtran/internal/coordinator"
	"github.com/valpere/simtran/internal/translator"
)

func TestLanguageFor(t *testing.T) {
	known := []internal.Language{{Code: "es", Name: "Spanish"}}

	tests := []struct {
		code     string
		wantCode string
		wantName string
		wantErr  bool
	}{
		{"auto", "", "Auto", false},
		{"", "", "Auto", false},
		{"ES", "es", "Spanish", false},
		{"uk", "uk", "Ukrainian", false},
		{"de", "de", "German", false},
		{"not a code!", "", "", true},
	}
	for _, tt := range tests {
		got, err := languageFor(tt.code, known)
		if tt.wantErr {
			if err == nil {
				t.Errorf("languageFor(%q): expected error", tt.code)
			}
			continue
		}
		if err != nil {
			t.Errorf("languageFor(%q) failed: %v", tt.code, err)
			continue
		}
		if got.Code != tt.wantCode || got.Name != tt.wantName {
			t.Errorf("languageFor(%q) = %+v, want {%s %s}", tt.code, got, tt.wantCode, tt.wantName)
		}
	}
}

func TestOrderByBookmarks(t *testing.T) {
	langs := []internal.Language{{Code: "de"}, {Code: "en"}, {Code: "uk"}, {Code: "es"}}
	bookmarks := []internal.Language{{Code: "uk"}, {Code: "de"}}

	var codes []string
	for _, l := range orderByBookmarks(langs, bookmarks) {
		codes = append(codes, l.Code)
	}
	if got := strings.Join(codes, ","); got != "de,uk,en,es" {
		t.Errorf("unexpected order %s", got)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"300", int64(300)},
		{"0.5", 0.5},
		{"true", true},
		{"False", false},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.raw); got != tt.want {
			t.Errorf("parseValue(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestParseSwitch(t *testing.T) {
	for _, raw := range []string{"on", "ON", "yes", "true", "1"} {
		if v, err := parseSwitch(raw); err != nil || !v {
			t.Errorf("parseSwitch(%q) = %v, %v", raw, v, err)
		}
	}
	for _, raw := range []string{"off", "no", "false", "0"} {
		if v, err := parseSwitch(raw); err != nil || v {
			t.Errorf("parseSwitch(%q) = %v, %v", raw, v, err)
		}
	}
	if _, err := parseSwitch("maybe"); err == nil {
		t.Error("expected error for maybe")
	}
}

func TestSessionPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newSessionPrinter(&buf)

	state := coordinator.State{
		PrimaryEngine: "google",
		Translating:   true,
		EngineResults: map[string]translator.Translation{"google": {}, "systran": {}},
	}
	p.update(state)
	if buf.Len() != 0 {
		t.Errorf("expected no output while translating, got %q", buf.String())
	}

	state.EngineResults["systran"] = translator.Translation{TranslatedText: "hola!"}
	p.update(state)

	state.Translating = false
	state.Translation = translator.Translation{TranslatedText: "hola"}
	state.EngineResults["google"] = state.Translation
	p.update(state)
	p.update(state)

	want := "  [systran] hola!\n→ hola\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	p.Notify(coordinator.Notification{Kind: coordinator.EngineUnreachable, Engine: "google", Err: errors.New("timeout")})
	if !strings.Contains(buf.String(), "google is unreachable: timeout") {
		t.Errorf("unexpected notification output %q", buf.String())
	}

	buf.Reset()
	p.Notify(coordinator.Notification{Kind: coordinator.OcrFailed, Err: errors.New("cannot read image")})
	if !strings.Contains(buf.String(), "text extraction failed: cannot read image") {
		t.Errorf("unexpected notification output %q", buf.String())
	}
}
