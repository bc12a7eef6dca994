package notice

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a toast shown to the player.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

var supported = []language.Tag{language.English, language.German, language.French, language.Spanish, language.BrazilianPortuguese}

var matcher = language.NewMatcher(supported)

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// ResolveTag picks the best supported language from an Accept-Language header.
func ResolveTag(accept string) language.Tag {
	accept = strings.TrimSpace(accept)
	if accept == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

func newf(level Level, format string, args ...any) Notice {
	return Notice{Level: level, Message: Printer(language.English).Sprintf(format, args...)}
}

func Info(format string, args ...any) Notice    { return newf(LevelInfo, format, args...) }
func Success(format string, args ...any) Notice { return newf(LevelSuccess, format, args...) }
func Warn(format string, args ...any) Notice    { return newf(LevelWarning, format, args...) }
func Error(format string, args ...any) Notice   { return newf(LevelError, format, args...) }

// FormatWTC renders an amount with digit grouping, e.g. "1,250 WTC".
func FormatWTC(n int64) string {
	return FormatWTCIn(language.English, n)
}

func FormatWTCIn(tag language.Tag, n int64) string {
	return Printer(tag).Sprintf("%d WTC", n)
}
