package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundCOP redondea al peso entero; los precios del marketplace se manejan
// sin centavos.
func RoundCOP(n float64) float64 {
	return math.Round(n)
}

// FormatCOP formatea un valor como pesos colombianos: $ 1.234.567
func FormatCOP(amount float64) string {
	entero := fmt.Sprintf("%.0f", math.Abs(RoundCOP(amount)))

	var parts []string
	for i := len(entero); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{entero[start:i]}, parts...)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + "$ " + strings.Join(parts, ".")
}
