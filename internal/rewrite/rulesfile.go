package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type ruleEntry struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
	Expand      bool   `yaml:"expand"`
}

type rulesFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

// LoadRules reads a YAML rules file:
//
//	rules:
//	  - pattern: 'use crate::error::Result;'
//	    replacement: 'use mcp_proxy_core::Result;'
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	set, err := ParseRules(data)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func ParseRules(data []byte) (RuleSet, error) {
	var doc rulesFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return RuleSet{}, fmt.Errorf("invalid rules file: %w", err)
	}

	if len(doc.Rules) == 0 {
		return RuleSet{}, errors.New("rules file defines no rules")
	}

	rules := make([]Rule, 0, len(doc.Rules))
	for i, entry := range doc.Rules {
		if entry.Pattern == "" {
			return RuleSet{}, fmt.Errorf("rule %d: pattern is required", i)
		}
		r, err := NewRule(entry.Pattern, entry.Replacement, entry.Expand)
		if err != nil {
			return RuleSet{}, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, r)
	}

	return NewRuleSet(rules...), nil
}
