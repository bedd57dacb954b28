package service

import (
	"strings"
	"unicode"
)

// defaultBlockedWords is the built-in list used by the guestbook and comments.
// The site has English and Indonesian readers, so both are covered.
var defaultBlockedWords = []string{
	// English
	"fuck", "fucker", "fucking", "motherfucker", "shit", "bullshit",
	"bitch", "bastard", "asshole", "cunt", "dick", "slut", "whore", "piss",
	// Indonesian
	"anjing", "bangsat", "bajingan", "kontol", "memek", "goblok", "tolol", "ngentot",
}

// leet folds the usual character substitutions back to letters before
// matching, so "sh1t" and "@sshole" are caught.
var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'@': 'a',
	'$': 's',
}

// ProfanityFilter matches whole words case-insensitively. A blocked word
// inside a longer word ("class", "scunthorpe") does not match.
type ProfanityFilter struct {
	words map[string]struct{}
}

// NewProfanityFilter blocks words. With no arguments the built-in list is used.
func NewProfanityFilter(words ...string) *ProfanityFilter {
	if len(words) == 0 {
		words = defaultBlockedWords
	}
	f := &ProfanityFilter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if w = strings.TrimSpace(strings.ToLower(w)); w != "" {
			f.words[w] = struct{}{}
		}
	}
	return f
}

// Contains reports whether text has at least one blocked word.
func (f *ProfanityFilter) Contains(text string) bool {
	for _, word := range tokenize(text) {
		if _, ok := f.words[word]; ok {
			return true
		}
	}
	return false
}

// tokenize lowercases and de-leets text, then splits it on anything that is
// not a letter or digit.
func tokenize(text string) []string {
	folded := strings.Map(func(r rune) rune {
		if l, ok := leet[r]; ok {
			return l
		}
		return unicode.ToLower(r)
	}, text)

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
