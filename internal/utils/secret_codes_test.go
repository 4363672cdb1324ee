package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecretCodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "header column",
			input:    "Partner,Secret Code\nacme,AAA-1\nacme,BBB-2\n",
			expected: []string{"AAA-1", "BBB-2"},
		},
		{
			name:     "headerless single column",
			input:    "AAA-1\nBBB-2\nCCC-3\n",
			expected: []string{"AAA-1", "BBB-2", "CCC-3"},
		},
		{
			name:     "blanks and duplicates dropped",
			input:    "code\nAAA-1\n\n AAA-1\nBBB-2\n",
			expected: []string{"AAA-1", "BBB-2"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes, err := ParseSecretCodes(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, codes)
		})
	}
}
