package rewrite

import (
	"fmt"
	"regexp"
)

// Rule is one pattern→replacement substitution applied to whole file text.
type Rule struct {
	pattern     *regexp.Regexp
	replacement string
	expand      bool
}

// NewRule compiles pattern. The replacement is inserted literally unless
// expand is set, in which case $1 and ${name} refer to capture groups.
func NewRule(pattern, replacement string, expand bool) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return Rule{pattern: re, replacement: replacement, expand: expand}, nil
}

// MustRule is NewRule for patterns known at compile time.
func MustRule(pattern, replacement string) Rule {
	r, err := NewRule(pattern, replacement, false)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) Apply(text string) string {
	if r.expand {
		return r.pattern.ReplaceAllString(text, r.replacement)
	}
	return r.pattern.ReplaceAllLiteralString(text, r.replacement)
}

func (r Rule) String() string {
	return fmt.Sprintf("%s => %s", r.pattern, r.replacement)
}

// RuleSet is an ordered sequence of rules. Later rules see the output of
// earlier ones.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) RuleSet {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return RuleSet{rules: cp}
}

func (s RuleSet) Len() int { return len(s.rules) }

// Rules returns a copy of the rules in application order.
func (s RuleSet) Rules() []Rule {
	cp := make([]Rule, len(s.rules))
	copy(cp, s.rules)
	return cp
}

func (s RuleSet) Apply(text string) string {
	for _, r := range s.rules {
		text = r.Apply(text)
	}
	return text
}
