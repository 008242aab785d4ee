// Package nlp holds the text processing used on scraped articles:
// normalisation, tokenisation, sentence splitting, tag counting,
// TF-IDF vectors, k-means topic models and entity context windows.
package nlp

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MinTokenLength is the shortest token kept by Tokenize, in runes
const MinTokenLength = 3

var invisible = strings.NewReplacer(
	"\u00a0", " ",
	"\u2007", " ",
	"\u202f", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u2060", "",
	"\ufeff", "",
	"\u00ad", "",
)

// CleanText normalises s to NFC, drops invisible characters and collapses
// whitespace.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = invisible.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’' || r == 'ʼ'
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || isApostrophe(r)
}

// Tokenize lowercases s and splits it into words. Short tokens, pure
// numbers and stopwords are dropped.
func Tokenize(s string) []string {
	lower := cases.Lower(language.Ukrainian).String(CleanText(s))

	var tokens []string
	for _, field := range strings.FieldsFunc(lower, func(r rune) bool { return !isTokenRune(r) }) {
		token := strings.TrimFunc(field, isApostrophe)
		// a single apostrophe form keeps "об'єкт" and "об’єкт" together
		token = strings.Map(func(r rune) rune {
			if isApostrophe(r) {
				return '\''
			}
			return r
		}, token)

		if len([]rune(token)) < MinTokenLength || isNumber(token) || IsStopword(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isClosing(r rune) bool {
	return r == '"' || r == '»' || r == '”' || r == ')'
}

func startsSentence(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '«' || r == '"' || r == '“' || r == '—' || r == '-'
}

// SplitSentences splits text after ".", "!", "?" or "…" when the next word
// starts with an uppercase letter, a digit, a dash or an opening quote.
func SplitSentences(text string) []string {
	runes := []rune(CleanText(text))
	if len(runes) == 0 {
		return nil
	}

	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || isClosing(runes[j])) {
			j++
		}
		if j+1 < len(runes) && runes[j] == ' ' && startsSentence(runes[j+1]) {
			sentences = append(sentences, string(runes[start:j]))
			start = j + 1
		}
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}
