package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is rendered for missing or unparseable values.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// Number renders v with thousands separators and the given number of decimals, e.g. 1234.5 -> "1,234.50".
func Number(v float64, decimals int) string {
	return printer.Sprintf("%.*f", decimals, v)
}

// OrNA formats v with two decimals, or returns "N/A" when v is not numeric.
func OrNA(v any) string {
	f, ok := ToFloat(v)
	if !ok {
		return NotAvailable
	}
	return Number(f, 2)
}

// ToFloat accepts JSON numbers and numeric strings. Non-finite values are rejected.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		n = strings.TrimSpace(n)
		if isHexLiteral(n) {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FloatOr is ToFloat with a fallback for missing or malformed values.
func FloatOr(v any, fallback float64) float64 {
	if f, ok := ToFloat(v); ok {
		return f
	}
	return fallback
}

// isHexLiteral reports a 0x prefix, which strconv.ParseFloat accepts as a hex float.
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Exact formats v with thousands separators and as many decimals as its shortest representation.
func Exact(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	decimals := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		decimals = len(s) - i - 1
	}
	return Number(v, decimals)
}
