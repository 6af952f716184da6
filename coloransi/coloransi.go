// Package coloransi renders ANSI-colored terminal text for warning
// emphasis and log labels.
package coloransi

import (
	"fmt"
	"strings"
)

// ColorCode is an ANSI foreground color code.
type ColorCode uint32

// ANSI color codes
const (
	Black   ColorCode = 30
	Red     ColorCode = 31
	Green   ColorCode = 32
	Yellow  ColorCode = 33
	Blue    ColorCode = 34
	Magenta ColorCode = 35
	Cyan    ColorCode = 36
	White   ColorCode = 37

	// For bright colors, add 60
	BrightRed    ColorCode = Red + 60
	BrightYellow ColorCode = Yellow + 60
	BrightWhite  ColorCode = White + 60

	// Background colors are the foreground code plus this offset
	BackgroundOffset ColorCode = 10
)

// TextStyle is an ANSI SGR text attribute.
type TextStyle uint8

const (
	Bold      TextStyle = 1
	Underline TextStyle = 4
	Reverse   TextStyle = 7
)

// Reset returns the SGR reset sequence.
func Reset() string {
	return "\033[0m"
}

// Foreground returns the escape sequence selecting fg.
func Foreground(fg ColorCode) string {
	return fmt.Sprintf("\033[%dm", fg)
}

// Background returns the escape sequence selecting bg as a background.
func Background(bg ColorCode) string {
	return fmt.Sprintf("\033[%dm", bg+BackgroundOffset)
}

// Color formats the arguments with the given foreground color.
func Color(fg ColorCode, v ...interface{}) string {
	return Foreground(fg) + join(v) + Reset()
}

// Style formats the arguments with the given text style.
func Style(style TextStyle, v ...interface{}) string {
	return fmt.Sprintf("\033[%dm%s%s", style, join(v), Reset())
}

// ColorAndStyle formats the arguments with both a color and a style.
func ColorAndStyle(fg ColorCode, style TextStyle, v ...interface{}) string {
	return fmt.Sprintf("\033[%dm\033[%dm%s%s", fg, style, join(v), Reset())
}

func join(v []interface{}) string {
	args := make([]string, len(v))
	for i, arg := range v {
		args[i] = fmt.Sprint(arg)
	}
	return strings.Join(args, " ")
}
