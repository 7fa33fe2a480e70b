package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

// A trailing k only means thousands when no letter follows it, so currencies
// written after the amount (KES, KSh, kwacha) keep their value.
var salaryNumber = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([kK]\b)?`)

// ParseSalary extracts the first number from a free-text salary range such as
// "GHS 5,000 - 8,000" or "$80k-$100k".
func ParseSalary(text string) (float64, bool) {
	m := salaryNumber.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		value *= 1000
	}
	return value, true
}
