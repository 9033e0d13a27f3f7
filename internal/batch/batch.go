// Package batch splits argument lists into groups that stay under a
// command-line length budget.
package batch

import (
	"errors"
	"fmt"
)

// DefaultBudget is the summed argument length allowed per batch when the
// caller does not pick one.
const DefaultBudget = 100000

// ErrInvalidBudget is returned when the budget is not a positive integer.
var ErrInvalidBudget = errors.New("invalid budget")

// Split partitions args into consecutive batches whose summed byte length
// does not exceed budget. An argument longer than budget is placed alone in
// its own batch. The result always holds at least one batch; empty input
// yields a single empty batch.
func Split(args []string, budget int) ([][]string, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBudget, budget)
	}

	var batches [][]string
	current := []string{}
	currentLen := 0
	for _, arg := range args {
		if len(current) > 0 && currentLen+len(arg) > budget {
			batches = append(batches, current)
			current = []string{}
			currentLen = 0
		}
		current = append(current, arg)
		currentLen += len(arg)
	}
	batches = append(batches, current)

	return batches, nil
}

// Size returns the summed byte length of the arguments in b.
func Size(b []string) int {
	n := 0
	for _, arg := range b {
		n += len(arg)
	}
	return n
}
