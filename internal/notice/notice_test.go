package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatWTC_GroupsDigits(t *testing.T) {
	assert.Equal(t, "0 WTC", FormatWTC(0))
	assert.Equal(t, "950 WTC", FormatWTC(950))
	assert.Equal(t, "1,250 WTC", FormatWTC(1250))
	assert.Equal(t, "1,000,000 WTC", FormatWTC(1_000_000))
}

func TestFormatWTCIn_German(t *testing.T) {
	assert.Equal(t, "1.250 WTC", FormatWTCIn(language.German, 1250))
}

func TestLevels(t *testing.T) {
	n := Warn("could not save: %s", "disk full")
	assert.Equal(t, LevelWarning, n.Level)
	assert.Equal(t, "could not save: disk full", n.Message)

	assert.Equal(t, "Found 2,500 WTC", Success("Found %d WTC", 2500).Message)
	assert.Equal(t, LevelError, Error("x").Level)
	assert.Equal(t, LevelInfo, Info("x").Level)
}

func TestResolveTag(t *testing.T) {
	assert.Equal(t, language.English, ResolveTag(""))
	assert.Equal(t, language.English, ResolveTag("!!bogus"))
	assert.Equal(t, language.German, ResolveTag("de-DE,de;q=0.9,en;q=0.5"))
}
