package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "plain text untouched", input: "Hola mundo", expected: "Hola mundo"},
		{name: "surrounding whitespace", input: "  Hola \n", expected: "Hola"},
		{name: "thinking block", input: "<thinking>hmm</thinking>Hola", expected: "Hola"},
		{name: "think block multiline", input: "<think>\nstep 1\nstep 2\n</think>\nHola", expected: "Hola"},
		{name: "dangling reasoning", input: "Hola<reasoning>cut off", expected: "Hola"},
		{name: "preamble with colon", input: "Here is the translation: Hola", expected: "Hola"},
		{name: "polite preamble", input: "Sure, here's the translation: Hola", expected: "Hola"},
		{name: "translation label", input: "Translation: Hola", expected: "Hola"},
		{name: "sure without preamble kept", input: "Sure thing, amigo", expected: "Sure thing, amigo"},
		{name: "double quotes", input: `"Hola"`, expected: "Hola"},
		{name: "guillemets", input: "«Привіт»", expected: "Привіт"},
		{name: "curly quotes", input: "“Hola”", expected: "Hola"},
		{name: "mismatched quotes kept", input: `"Hola'`, expected: `"Hola'`},
		{name: "code fence", input: "```text\nHola\n```", expected: "Hola"},
		{name: "everything", input: "<think>x</think>Here is the translation: \"Hola\"", expected: "Hola"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
