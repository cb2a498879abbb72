package log

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	assert.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewHonoursLevel(t *testing.T) {
	l := New(zerolog.WarnLevel)
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
	assert.True(t, Logr(l).GetSink() != nil)
}
