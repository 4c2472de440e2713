package model

import (
	"fmt"
	"regexp"
	"sync"
)

const (
	RuleRequired = "required"
	RulePattern  = "pattern"
)

// ValidationRule is a declarative constraint. Pattern rules keep the raw
// expression so views serialise deterministically; the compiled form lives
// in a process-wide cache.
type ValidationRule struct {
	Kind    string `json:"kind"`
	Pattern string `json:"pattern,omitempty"`
	Message string `json:"message,omitempty"`
}

// Required returns a required rule.
func Required() ValidationRule {
	return ValidationRule{Kind: RuleRequired}
}

// Pattern returns a pattern rule. It panics on an invalid expression, the same
// way regexp.MustCompile does, since rules are declared at package level.
func Pattern(expr, message string) ValidationRule {
	if _, err := compilePattern(expr); err != nil {
		panic(err)
	}
	return ValidationRule{Kind: RulePattern, Pattern: expr, Message: message}
}

// Match reports whether value satisfies a pattern rule. Non pattern rules and
// empty patterns always match.
func (r ValidationRule) Match(value string) (bool, error) {
	if r.Kind != RulePattern || r.Pattern == "" {
		return true, nil
	}
	re, err := compilePattern(r.Pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(value), nil
}

var patternCache sync.Map

func compilePattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("model: invalid pattern %q: %w", expr, err)
	}
	actual, _ := patternCache.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp), nil
}
