package main

import "testing"

func TestRunUsage(t *testing.T) {
	tests := [][]string{
		nil,
		{"a.mp4", "b.mp4"},
	}
	for _, args := range tests {
		if code := run(args); code != 1 {
			t.Errorf("run(%q) = %d, want 1", args, code)
		}
	}
}
