// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search scores text for the ranking engine. Similarity is the
// Jaccard overlap of character trigrams; Rank is a term-coverage score in
// the spirit of ts_rank, normalized to [0,1].
package search

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// TextIndex supplies relevance signals for free-text queries.
type TextIndex interface {
	// Rank scores how well text covers the terms of query, in [0,1].
	Rank(query, text string) float64
	// Similarity is a fuzzy string score in [0,1] tolerant of misspelling.
	Similarity(a, b string) float64
}

// Index is the in-process TextIndex.
type Index struct {
	trigrams *metrics.Jaccard
}

// New returns an in-process TextIndex.
func New() *Index {
	return &Index{trigrams: &metrics.Jaccard{NgramSize: 3}}
}

// Similarity returns the trigram Jaccard similarity of a and b after both
// are reduced to lower-case words separated by single spaces. Two empty
// strings are not similar.
func (x *Index) Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, x.trigrams)
}

// Rank returns coverage * (0.6 + 0.4 * density): coverage is the share of
// distinct query terms found in text, density grows with how often the
// matched terms occur and saturates at 1.
func (x *Index) Rank(query, text string) float64 {
	terms := unique(Tokenize(query))
	if len(terms) == 0 {
		return 0
	}
	doc := Tokenize(text)
	if len(doc) == 0 {
		return 0
	}

	matched := 0
	var density float64
	for _, term := range terms {
		tf := 0
		for _, tok := range doc {
			if termMatches(term, tok) {
				tf++
			}
		}
		if tf == 0 {
			continue
		}
		matched++
		density += float64(tf) / float64(tf+1)
	}
	if matched == 0 {
		return 0
	}
	coverage := float64(matched) / float64(len(terms))
	density /= float64(matched)
	return coverage * (0.6 + 0.4*density)
}

// Tokenize lower-cases s and splits it into runs of letters and digits.
// "+" and "#" stay attached so "C++" and "C#" survive as terms.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// termMatches treats a token as a hit when it equals the term or, for
// terms of four or more characters, when one is a prefix of the other
// ("develop" / "developers").
func termMatches(term, tok string) bool {
	if term == tok {
		return true
	}
	if len(term) < 4 || len(tok) < 4 {
		return false
	}
	return strings.HasPrefix(tok, term) || strings.HasPrefix(term, tok)
}

// normalize keeps the letters and digits of s, lower-cased, with words
// separated by single spaces.
func normalize(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

func unique(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
