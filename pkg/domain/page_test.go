package domain

import "testing"

func TestStorageIndex(t *testing.T) {
	tests := []struct {
		name    string
		logical int
		length  int
		want    int
		wantOK  bool
	}{
		{"oldest page is last in storage", 1, 3, 2, true},
		{"newest page is first in storage", 3, 3, 0, true},
		{"middle page", 2, 3, 1, true},
		{"single page", 1, 1, 0, true},
		{"zero is not a page", 0, 3, -1, false},
		{"beyond length", 4, 3, -1, false},
		{"empty storage", 1, 0, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StorageIndex(tt.logical, tt.length)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StorageIndex(%d, %d) = (%d, %v), want (%d, %v)",
					tt.logical, tt.length, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLogicalNumber_InvertsStorageIndex(t *testing.T) {
	for length := 1; length <= 6; length++ {
		for logical := 1; logical <= length; logical++ {
			idx, ok := StorageIndex(logical, length)
			if !ok {
				t.Fatalf("StorageIndex(%d, %d) rejected a live page", logical, length)
			}
			back, ok := LogicalNumber(idx, length)
			if !ok || back != logical {
				t.Errorf("LogicalNumber(%d, %d) = %d, want %d", idx, length, back, logical)
			}
		}
	}

	if _, ok := LogicalNumber(-1, 2); ok {
		t.Error("negative index must be rejected")
	}
	if _, ok := LogicalNumber(2, 2); ok {
		t.Error("index past the end must be rejected")
	}
}

func TestRenumberSpan(t *testing.T) {
	tests := []struct {
		target, length, want int
	}{
		{1, 4, 4},
		{2, 4, 3},
		{4, 4, 1},
		{5, 4, 0},
		{9, 4, 0},
		{0, 4, 4},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := RenumberSpan(tt.target, tt.length); got != tt.want {
			t.Errorf("RenumberSpan(%d, %d) = %d, want %d", tt.target, tt.length, got, tt.want)
		}
	}
}
