package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "  hello ", limit: 10, want: "hello"},
		{name: "exact", in: "hello", limit: 5, want: "hello"},
		{name: "long", in: "hello world", limit: 5, want: "hello..."},
		{name: "runes", in: "привет мир", limit: 6, want: "привет..."},
		{name: "zero limit", in: "hello", limit: 0, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TruncateForLog(tc.in, tc.limit))
		})
	}
}

func TestNewBuildsBothEncodings(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New(false, false)
	require.NoError(t, err)
	assert.NotNil(t, l)

	assert.NotNil(t, OrNop(nil))
}

func TestNewStderrLevels(t *testing.T) {
	l, err := NewStderr(false, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1))

	l, err = NewStderr(false, true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))
}
