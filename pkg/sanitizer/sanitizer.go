package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
	reWhitespace        = regexp.MustCompile(`\s+`)

	// fillerWords carry no identifying signal in hospital names and venues.
	fillerWords = map[string]struct{}{
		"the": {}, "of": {}, "and": {}, "at": {},
		"hospital": {}, "hospitals": {}, "medical": {}, "center": {}, "centre": {},
		"clinic": {}, "general": {}, "st": {}, "saint": {},
	}
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func SanitizeNameOrAddress(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

// Tokens splits a name or address into its significant lowercase words.
func Tokens(input string) []string {
	parts := strings.Split(SanitizeNameOrAddress(input), "_")
	return SanitizeSlice(parts, func(s string) string {
		if _, filler := fillerWords[s]; filler {
			return ""
		}
		return s
	})
}

// SanitizeSerial uppercases a serial number and strips its whitespace.
func SanitizeSerial(input string) string {
	return strings.ToUpper(reWhitespace.ReplaceAllString(input, ""))
}

func SanitizeSlice(values []string, strategy Strategy) []string {
	seen := make(map[string]struct{})
	out := []string{}

	for _, v := range values {
		s := strategy(v)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}
