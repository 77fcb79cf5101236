package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"things", "things", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"ec2", "s3", "Things", "thing", "cloudsearchdomain"}

	assert.Equal(t, []string{"Things", "thing"}, FindSimilar("thingz", candidates, nil))
	assert.Equal(t, []string{"thing"}, FindSimilar("thingz", candidates, &FuzzyMatchOptions{CaseSensitive: true, MaxDistance: 1}))
	assert.Len(t, FindSimilar("s", candidates, &FuzzyMatchOptions{MaxSuggestions: 1}), 1)
	assert.Empty(t, FindSimilar("lambda", candidates, nil))
}
