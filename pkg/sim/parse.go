// G-code line parsing
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package sim

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
)

// word is one letter-number pair from a G-code line.
type word struct {
	letter byte
	value  float64
}

// stripComments removes parenthesized inline comments and everything after
// a semicolon. An unclosed paren comment runs to end of line, which is how
// most controllers treat it.
func stripComments(line string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == ';' && depth == 0:
			return b.String()
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// parseLine scans a stripped line into words. Whitespace between the
// letter and its number, and between words, is tolerated. N line numbers
// are dropped. A letter without a parseable number is a parse error.
func parseLine(line string, lineNo int) ([]word, error) {
	raw := line
	line = strings.TrimSpace(stripComments(line))
	var words []word
	i := 0
	for i < len(line) {
		c := line[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		letter := byte(unicode.ToUpper(rune(c)))
		if letter < 'A' || letter > 'Z' {
			return nil, errors.ParseError(lineNo, raw, "unexpected character "+strconv.QuoteRune(rune(c)))
		}
		i++
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		j := i
		for j < len(line) && (line[j] == '+' || line[j] == '-' || line[j] == '.' || (line[j] >= '0' && line[j] <= '9')) {
			j++
		}
		if j == i {
			return nil, errors.ParseError(lineNo, raw, "letter "+string(letter)+" has no number")
		}
		v, err := strconv.ParseFloat(line[i:j], 64)
		if err != nil {
			return nil, errors.ParseError(lineNo, raw, "bad number "+strconv.Quote(line[i:j]))
		}
		if letter != 'N' {
			words = append(words, word{letter: letter, value: v})
		}
		i = j
	}
	return words, nil
}
