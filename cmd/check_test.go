package cmd

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2 string
		want   int
	}{
		{"1.5.0", "1.5.0", 0},
		{"v1.5.0", "1.5.0", 0},
		{"1.4.2", "1.5.0", -1},
		{"1.5.1", "1.5.0", 1},
		{"2.0.0", "1.9.9", 1},
		{"1.5", "1.5.0", 0},
		{"1.5.0-rc1", "1.5.0", -1},
		{"garbage", "1.5.0", -1},
		{"1.5.0", "garbage", -1},
	}

	for _, tt := range tests {
		if got := compareVersions(tt.v1, tt.v2); got != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d; want %d", tt.v1, tt.v2, got, tt.want)
		}
	}
}
