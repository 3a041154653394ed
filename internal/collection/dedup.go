// Package collection coalesces records that share an identity key.
package collection

import (
	"fmt"
	"strings"
)

// Policy decides which of several records with the same key survives.
type Policy string

const (
	LastWins  Policy = "last"
	FirstWins Policy = "first"
)

// ParsePolicy maps a configuration value to a Policy; empty means LastWins.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case LastWins, "":
		return LastWins, nil
	case FirstWins:
		return FirstWins, nil
	default:
		return "", fmt.Errorf("unknown dedup policy %q", raw)
	}
}

// Result is the outcome of Dedup.
type Result[T any, K comparable] struct {
	// Records holds one survivor per key, in first-occurrence order of keys.
	Records []T
	// Duplicates lists each key seen more than once, in first-collision order.
	Duplicates []K
}

// Dedup keeps one record per key according to policy.
func Dedup[T any, K comparable](records []T, key func(T) K, policy Policy) Result[T, K] {
	index := make(map[K]int, len(records))
	seen := make(map[K]bool)
	out := Result[T, K]{Records: make([]T, 0, len(records))}

	for _, record := range records {
		k := key(record)
		pos, exists := index[k]
		if !exists {
			index[k] = len(out.Records)
			out.Records = append(out.Records, record)
			continue
		}
		if !seen[k] {
			seen[k] = true
			out.Duplicates = append(out.Duplicates, k)
		}
		if policy != FirstWins {
			out.Records[pos] = record
		}
	}
	return out
}
