package flight

import (
	"regexp"
	"strings"
)

// Three-letter ICAO designator, or two-character IATA designator which may contain a digit (3C)
var designatorPattern = regexp.MustCompile(`^([A-Z]{3}|[A-Z0-9]{2})(\d{1,4}[A-Z]?)$`)

// ParseDesignator splits a flight identifier into airline designator and number.
// When number is already given the designator is only cleaned up.
func ParseDesignator(designator, number string) (string, string) {
	d := strings.ToUpper(strings.ReplaceAll(designator, " ", ""))
	n := strings.ToUpper(strings.TrimSpace(number))
	if n != "" {
		return d, n
	}
	if m := designatorPattern.FindStringSubmatch(d); m != nil {
		return m[1], m[2]
	}
	return d, ""
}
