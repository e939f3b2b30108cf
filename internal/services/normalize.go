package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTextLen caps poll titles and option texts, in runes.
const MaxTextLen = 255

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeText applies NFC, trims the ends and collapses inner whitespace.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// cleanTitle normalizes a poll title and enforces its length rules.
func cleanTitle(s string) (string, error) {
	s = normalizeText(s)
	switch {
	case s == "":
		return "", ErrEmptyTitle
	case utf8.RuneCountInString(s) > MaxTextLen:
		return "", ErrTitleTooLong
	}
	return s, nil
}

// cleanOption normalizes an option text and enforces its length rules.
func cleanOption(s string) (string, error) {
	s = normalizeText(s)
	switch {
	case s == "":
		return "", ErrEmptyOptionText
	case utf8.RuneCountInString(s) > MaxTextLen:
		return "", ErrOptionTooLong
	}
	return s, nil
}
