// Package match implements the string predicates used by survey display
// conditions. All predicates are pure: an ordered list of targets, one
// subject value, a boolean out.
package match

import (
	"regexp"
	"strings"
)

type Type string

const (
	Contains    Type = "contains"
	NotContains Type = "not_contains"
	Regex       Type = "regex"
	NotRegex    Type = "not_regex"
	Exact       Type = "exact"
	NotExact    Type = "not_exact"
)

// OrDefault resolves a missing match type to Contains.
func (t Type) OrDefault() Type {
	if t == "" {
		return Contains
	}
	return t
}

// Matches reports whether value satisfies the predicate t over targets.
// An unknown match type never matches.
func Matches(t Type, targets []string, value string) bool {
	switch t.OrDefault() {
	case Contains:
		return containsAny(targets, value)
	case NotContains:
		return !containsAny(targets, value)
	case Regex:
		return matchesAny(targets, value)
	case NotRegex:
		return !matchesAny(targets, value)
	case Exact:
		return equalsAny(targets, value)
	case NotExact:
		return !equalsAny(targets, value)
	default:
		return false
	}
}

func containsAny(targets []string, value string) bool {
	value = strings.ToLower(value)
	for _, target := range targets {
		if strings.Contains(value, strings.ToLower(target)) {
			return true
		}
	}
	return false
}

// matchesAny treats an unparseable pattern as a non-match.
func matchesAny(targets []string, value string) bool {
	for _, target := range targets {
		re, err := regexp.Compile(target)
		if err != nil {
			continue
		}
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

func equalsAny(targets []string, value string) bool {
	for _, target := range targets {
		if value == target {
			return true
		}
	}
	return false
}
