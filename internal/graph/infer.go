package graph

import "strings"

var typeByPrefix = map[string]string{
	"R":   "resistor",
	"C":   "capacitor",
	"L":   "inductor",
	"D":   "diode",
	"Q":   "transistor",
	"U":   "ic",
	"IC":  "ic",
	"J":   "connector",
	"CN":  "connector",
	"USB": "connector",
	"SW":  "switch",
	"TP":  "test_point",
	"M":   "mechanical",
	"X":   "crystal",
	"Y":   "crystal",
	"LED": "led",
	"F":   "fuse",
	"FB":  "ferrite_bead",
	"BT":  "battery",
	"RN":  "resistor_array",
}

// InferType guesses a component type from the alphabetic prefix of its
// designator ("C213" -> capacitor). Unknown prefixes yield "unknown".
func InferType(designator string) string {
	var prefix strings.Builder
	for _, r := range designator {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			prefix.WriteRune(r)
			continue
		}
		break
	}
	if t, ok := typeByPrefix[strings.ToUpper(prefix.String())]; ok {
		return t
	}
	return "unknown"
}
