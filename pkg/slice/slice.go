// Copyright (c) 2026 Mavun. All rights reserved.

// Package slice complements the standard [slices] package with the functional
// helpers (Map, Filter) that the stdlib deliberately leaves out.
package slice

// Map transforms each element of input through fn, preserving order. A nil
// input maps to nil, never an empty slice, so the distinction survives
// serialization.
func Map[T any, U any](input []T, fn func(T) U) []U {
	if input == nil {
		return nil
	}

	output := make([]U, len(input))
	for i, value := range input {
		output[i] = fn(value)
	}
	return output
}

// Filter returns the elements of input for which keep evaluates to true, in
// their original order. The result is not pre-allocated; heavy filters would
// otherwise waste the full capacity.
func Filter[T any](input []T, keep func(T) bool) []T {
	if input == nil {
		return nil
	}

	var output []T
	for _, value := range input {
		if keep(value) {
			output = append(output, value)
		}
	}
	return output
}
