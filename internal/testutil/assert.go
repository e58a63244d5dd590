// Package testutil provides shared test helpers.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/slices"
)

// AssertEqual compares got and want using cmp.Diff and reports differences.
func AssertEqual(t testing.TB, got, want any, msg string, opts ...cmp.Option) {
	t.Helper()
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		if msg != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", msg, diff)
		} else {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

// AssertNoError fails the test immediately if err is not nil.
func AssertNoError(t testing.TB, err error, format string, args ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", fmt.Sprintf(format, args...), err)
	}
}

// SortedStrings returns a sorted copy, for order-insensitive comparisons.
func SortedStrings(in []string) []string {
	out := slices.Clone(in)
	slices.Sort(out)
	return out
}
