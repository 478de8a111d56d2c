package config

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseAmount extracts a number from free-form text such as "€1.2M" or
// "0.35 /yr". Everything except digits, '.' and '-' is dropped, then the
// longest leading number is read, so "1.2.3" is 1.2 and "€1.2M to €1.5M"
// is 1.21. Input without a leading number yields 0.
func ParseAmount(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)

	f, err := strconv.ParseFloat(numericPrefix(cleaned), 64)
	if err != nil {
		return 0
	}
	return f
}

// numericPrefix returns the longest prefix of s shaped like -?digits.digits
// with at least one digit, or "" when there is none.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:i]
}

// Amount is a numeric level constant that tolerates decorated strings in
// YAML and fails closed to 0 instead of rejecting the document.
type Amount float64

// Float returns the amount as a float64.
func (a Amount) Float() float64 { return float64(a) }

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*a = 0
		return nil
	}

	var f float64
	if err := node.Decode(&f); err == nil {
		*a = Amount(f)
		return nil
	}
	*a = Amount(ParseAmount(node.Value))
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Amount) MarshalYAML() (any, error) {
	return float64(a), nil
}
