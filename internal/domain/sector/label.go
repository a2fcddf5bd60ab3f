package sector

import (
	"strings"
	"unicode/utf8"
)

// WrapLabel splits a category name over two lines when it has more than one
// word and is longer than 10 characters.  The first line takes the larger
// half of the words.
func WrapLabel(name string) []string {
	words := strings.Fields(name)
	if len(words) <= 1 || utf8.RuneCountInString(name) <= 10 {
		return []string{name}
	}
	split := (len(words) + 1) / 2
	return []string{strings.Join(words[:split], " "), strings.Join(words[split:], " ")}
}

//Personal.AI order the ending
