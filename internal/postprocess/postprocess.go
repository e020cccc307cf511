// Package postprocess strips the chatter LLM-backed engines wrap around a
// translation so that only the translated text reaches the coordinator.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	// RE2 has no backreferences, so every tag pair is spelled out.
	reasoningRe = regexp.MustCompile(`(?is)<(think|thinking|reasoning|reflection)>.*?</(think|thinking|reasoning|reflection)>`)
	// an opening tag whose model output was cut before the closing tag
	danglingRe = regexp.MustCompile(`(?is)<(?:think|thinking|reasoning|reflection)>.*$`)
	fenceRe    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n(.*)\\n```$")

	preambleRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]?\s+`),
		regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| your)? (?:translated )?(?:translation|text)\s*:`),
		regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*:`),
	}
)

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'«':      '»',
	'\u201C': '\u201D',
	'\u2018': '\u2019',
}

// Clean returns text without reasoning blocks, code fences, a leading
// "Here is the translation:" style preamble, or a wrapping quote pair.
func Clean(text string) string {
	text = reasoningRe.ReplaceAllString(text, "")
	text = danglingRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	text = stripPreamble(text)
	return unquote(text)
}

// stripPreamble only drops a leading "Certainly," when a real preamble
// with a colon follows it; otherwise the text is left untouched.
func stripPreamble(text string) string {
	rest := text
	if loc := preambleRes[0].FindStringIndex(rest); loc != nil {
		rest = rest[loc[1]:]
	}
	for _, re := range preambleRes[1:] {
		if loc := re.FindStringIndex(rest); loc != nil {
			return strings.TrimSpace(rest[loc[1]:])
		}
	}
	return text
}

func unquote(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	closing, ok := quotePairs[runes[0]]
	if !ok || runes[len(runes)-1] != closing {
		return text
	}
	return strings.TrimSpace(string(runes[1 : len(runes)-1]))
}
