package services

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a whole-pula amount with thousands separators
func FormatAmount(v int64) string {
	return amountPrinter.Sprintf("%d", v)
}

// FormatBWP renders an amount as "BWP 1,250,000"
func FormatBWP(v int64) string {
	return "BWP " + FormatAmount(v)
}
