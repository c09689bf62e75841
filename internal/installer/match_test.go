package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"Sources/A.m", "Sources/*.m", true},
		{"Sources/Deep/A.m", "Sources/*.m", false},
		{"Sources/Deep/A.m", "Sources/**/*.m", true},
		{"Sources/A.m", "Sources/**/*.m", true},
		{"Sources/A.m", "**", true},
		{"Other/A.m", "Sources/**", false},
		{"Sources/A.h", "Sources/?.h", true},
		{"Sources/AB.h", "Sources/?.h", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchGlob(tt.name, tt.pattern))
		})
	}
}

func TestExpandBraces(t *testing.T) {
	assert.Equal(t, []string{"a/*.h", "a/*.m"}, expandBraces("a/*.{h,m}"))
	assert.Equal(t, []string{"x/1.a", "x/1.b", "y/1.a", "y/1.b"}, expandBraces("{x,y}/1.{a,b}"))
	assert.Equal(t, []string{"plain"}, expandBraces("plain"))
	assert.Equal(t, []string{"open{"}, expandBraces("open{"))
}
