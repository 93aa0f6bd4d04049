package value

import "strconv"

// formatNumber mirrors clox's printf("%g", ...): integral doubles print
// without a trailing ".0" or exponent for the ranges this language
// actually exercises, and everything else uses Go's shortest
// round-trippable decimal form.
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'g', -1, 64)
}
