// Package won renders Korean won amounts for display.
package won

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Format renders amount with Korean digit grouping and the 원 suffix, e.g. "8,500원".
func Format(amount int) string {
	return message.NewPrinter(language.Korean).Sprintf("%d원", amount)
}
