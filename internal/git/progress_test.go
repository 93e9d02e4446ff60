package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type progressCall struct {
	phase          string
	current, total int
}

func TestNewProgressWriter_NilFunc(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewProgressWriter(nil))
}

func TestProgressWriter_Write(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		chunks   []string
		expected []progressCall
	}{
		{
			name:   "percent lines with carriage returns",
			chunks: []string{"Counting objects:  50% (5/10)\rCounting objects: 100% (10/10), done.\n"},
			expected: []progressCall{
				{phase: "Counting objects", current: 5, total: 10},
				{phase: "Counting objects", current: 10, total: 10},
			},
		},
		{
			name:   "line split across writes",
			chunks: []string{"Compressing obj", "ects:  25% (1/4)", "\r"},
			expected: []progressCall{
				{phase: "Compressing objects", current: 1, total: 4},
			},
		},
		{
			name:   "count without total",
			chunks: []string{"Enumerating objects: 42, done.\n"},
			expected: []progressCall{
				{phase: "Enumerating objects", current: 42, total: 0},
			},
		},
		{
			name:     "unparseable and partial lines are ignored",
			chunks:   []string{"Total 5 (delta 0), reused 0\n", "\n", "Counting objects: 1"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls []progressCall
			w := NewProgressWriter(func(phase string, current, total int) {
				calls = append(calls, progressCall{phase: phase, current: current, total: total})
			})
			for _, chunk := range tt.chunks {
				n, err := w.Write([]byte(chunk))
				assert.NoError(t, err)
				assert.Equal(t, len(chunk), n)
			}
			assert.Equal(t, tt.expected, calls)
		})
	}
}
