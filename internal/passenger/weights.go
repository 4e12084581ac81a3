package passenger

import "strings"

// Standard passenger masses in kilograms by fare type
var standardWeightsKg = map[string]float64{
	"AD":     86,
	"ADT":    86,
	"ADULT":  86,
	"A":      86,
	"CHD":    46,
	"CHILD":  46,
	"C":      46,
	"INF":    15,
	"INFANT": 15,
}

// StandardWeightKg returns the standard mass for a fare type, adult when unknown
func StandardWeightKg(fareType string) float64 {
	if w, ok := standardWeightsKg[strings.ToUpper(strings.TrimSpace(fareType))]; ok {
		return w
	}
	return standardWeightsKg["AD"]
}
