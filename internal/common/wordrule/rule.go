// Package wordrule implements the case-preserving word substitution applied to
// page text. A Rule replaces three literal spellings of its target word
// (UPPER, Title and lower case) with the matching spelling of the replacement.
// Other mixed-case spellings are deliberately left alone.
package wordrule

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrEmptyTarget is returned by New when the target has no visible characters.
var ErrEmptyTarget = errors.New("target word must not be empty")

// Variant is one literal find/replace pair.
type Variant struct {
	Find    string
	Replace string
}

// Rule is immutable after New and safe for concurrent use.
type Rule struct {
	target      string
	replacement string
	variants    []Variant
	anyCase     *regexp.Regexp
}

// New builds a rule replacing target with replacement.
// The casing of the arguments does not matter; both are re-cased per variant.
func New(target, replacement string) (*Rule, error) {
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyTarget
	}

	return &Rule{
		target:      target,
		replacement: replacement,
		variants: []Variant{
			{Find: strings.ToUpper(target), Replace: strings.ToUpper(replacement)},
			{Find: titleCase(target), Replace: titleCase(replacement)},
			{Find: strings.ToLower(target), Replace: strings.ToLower(replacement)},
		},
		anyCase: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(target)),
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and constants.
func MustNew(target, replacement string) *Rule {
	r, err := New(target, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

// Target returns the word the rule looks for, as configured.
func (r *Rule) Target() string { return r.target }

// Replacement returns the substitute word, as configured.
func (r *Rule) Replacement() string { return r.replacement }

// Variants returns the find/replace pairs in the order they are applied.
func (r *Rule) Variants() []Variant {
	out := make([]Variant, len(r.variants))
	copy(out, r.variants)
	return out
}

// Matches reports whether text contains the target in any casing.
func (r *Rule) Matches(text string) bool {
	return r.anyCase.MatchString(text)
}

// Apply returns text with every UPPER, Title and lower occurrence of the target
// replaced. The passes run in that order over the output of the previous one.
// When text has no case-insensitive occurrence it is returned as is.
func (r *Rule) Apply(text string) string {
	if !r.Matches(text) {
		return text
	}
	for _, v := range r.variants {
		text = strings.ReplaceAll(text, v.Find, v.Replace)
	}
	return text
}

// titleCase upper-cases the first rune and lower-cases the rest.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
