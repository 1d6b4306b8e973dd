package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBumpVersion(t *testing.T) {
	tests := []struct {
		current        string
		contentChanged bool
		want           string
	}{
		{"1.0", true, "2.0"},
		{"1.0", false, "1.1"},
		{"2.3", true, "3.0"},
		{"2.3", false, "2.4"},
		{"garbage", true, InitialVersion},
		{"", false, InitialVersion},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BumpVersion(tt.current, tt.contentChanged),
			"BumpVersion(%q, %v)", tt.current, tt.contentChanged)
	}
}
