package vendors

import (
	"regexp"
	"strconv"
	"strings"
)

var priceValueRegex = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParsePriceValue extracts a numeric value from a storefront price string
// like "$12.50 CAD" or "1,299.00". Returns nil when no number is present.
func ParsePriceValue(text string) *float64 {
	if text == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(text, ",", "")
	match := priceValueRegex.FindString(cleaned)
	if match == "" {
		return nil
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &value
}
