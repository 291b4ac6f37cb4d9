package linkage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"equal", "arcadio", "arcadio", 0},
		{"empty both", "", "", 0},
		{"empty left", "", "abc", 3},
		{"empty right", "abc", "", 3},
		{"substitution", "santos", "santas", 1},
		{"insertion", "santo", "santos", 1},
		{"deletion", "santos", "santo", 1},
		{"adjacent transposition", "arcaido", "arcadio", 1},
		{"transposition not doubled", "ab", "ba", 1},
		{"two edits", "lacson", "larsen", 2},
		{"unrelated", "garcia", "reyes", 6},
		{"unicode runes", "peña", "pena", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}
