package graph

import "strings"

// CompareDesignators orders reference designators naturally: by the
// alphabetic prefix, then by the numeric suffix as a number, so C2
// sorts before C10. Non-conforming designators fall back to plain
// string order.
func CompareDesignators(a, b string) int {
	ap, an, aok := splitDesignator(a)
	bp, bn, bok := splitDesignator(b)

	if aok && bok {
		if ap != bp {
			return strings.Compare(ap, bp)
		}
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	return strings.Compare(a, b)
}

// splitDesignator splits "C213" into ("C", 213). ok is false when the
// designator does not end in digits.
func splitDesignator(d string) (prefix string, num int, ok bool) {
	i := len(d)
	for i > 0 && d[i-1] >= '0' && d[i-1] <= '9' {
		i--
	}
	if i == len(d) {
		return d, 0, false
	}
	n := 0
	for _, c := range d[i:] {
		n = n*10 + int(c-'0')
	}
	return d[:i], n, true
}

// ComparePins orders pins by designator (naturally), then pin number
// (numerically when both are numeric).
func ComparePins(a, b Pin) int {
	if c := CompareDesignators(a.Designator, b.Designator); c != 0 {
		return c
	}
	an, aok := atoi(a.Number)
	bn, bok := atoi(b.Number)
	if aok && bok && an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Number, b.Number)
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
