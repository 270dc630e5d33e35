package tui

import (
	"strconv"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 200

// editRune processes a keystroke for inline text editing. Handles backspace
// (rune-aware) and single printable characters; non-printable keys leave the
// text unchanged. Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// editDigits is editRune restricted to decimal digits, for quantity fields.
func editDigits(text string, key string) string {
	if key != "backspace" && (key < "0" || key > "9") {
		return text
	}
	return editRune(text, key)
}

// parseQuantity converts a digits-only input to an int, defaulting to 1 for
// empty input.
func parseQuantity(text string) int {
	if text == "" {
		return 1
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 1
	}
	return n
}

// renderInput renders a one-line form input with prompt, value or
// placeholder, and a cursor when focused.
func renderInput(prompt, value, placeholder string, focused bool) string {
	line := inputPromptStyle.Render(prompt+" ") + normalStyle.Render(value)
	if value == "" && !focused {
		line = inputPromptStyle.Render(prompt+" ") + inputPlaceholderStyle.Render(placeholder)
	}
	if focused {
		line += accentStyle.Render("█")
	}
	return line
}

// maskValue replaces every rune with a bullet, for password fields.
func maskValue(value string) string {
	masked := make([]rune, utf8.RuneCountInString(value))
	for i := range masked {
		masked[i] = '•'
	}
	return string(masked)
}
