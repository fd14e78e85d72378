// Package rut validates and formats Chilean RUT identifiers.
package rut

import (
	"strconv"
	"strings"
)

// Clean strips dots, dashes and spaces and upper-cases the check digit.
func Clean(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(rut)))
}

// CheckDigit computes the mod-11 check digit of the numeric body.
func CheckDigit(body string) (string, bool) {
	if body == "" {
		return "", false
	}
	sum := 0
	multiplier := 2
	for i := len(body) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(string(body[i]))
		if err != nil {
			return "", false
		}
		sum += n * multiplier
		if multiplier == 7 {
			multiplier = 2
		} else {
			multiplier++
		}
	}
	switch dv := 11 - sum%11; dv {
	case 11:
		return "0", true
	case 10:
		return "K", true
	default:
		return strconv.Itoa(dv), true
	}
}

// Valid reports whether rut carries a correct check digit. An empty RUT is
// valid because the field is optional on registration.
func Valid(rut string) bool {
	if strings.TrimSpace(rut) == "" {
		return true
	}
	clean := Clean(rut)
	if len(clean) < 2 {
		return false
	}
	expected, ok := CheckDigit(clean[:len(clean)-1])
	return ok && expected == clean[len(clean)-1:]
}

// Format renders a RUT as "12.345.678-5".
func Format(rut string) string {
	clean := Clean(rut)
	if len(clean) < 2 {
		return clean
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]

	var b strings.Builder
	for i, ch := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(ch)
	}
	return b.String() + "-" + dv
}
