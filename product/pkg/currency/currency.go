package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultSymbol = "$"

var printer = message.NewPrinter(language.English)

// Symbol maps a currency code to its narrow CLDR symbol. An empty or
// malformed code falls back to DefaultSymbol, a valid ISO code without a
// narrow symbol is shown as the code itself.
func Symbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultSymbol
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return DefaultSymbol
	}
	return printer.Sprint(currency.NarrowSymbol(unit))
}

func Format(amount decimal.Decimal, code string) string {
	return Symbol(code) + amount.StringFixed(2)
}
