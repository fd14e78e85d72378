package rut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"11.111.111-1", true},
		{"12.345.678-5", true},
		{"123456785", true},
		{"12.345.678-4", false},
		{"10.000.013-K", true},
		{"10000013k", true},
		{"5", false},
		{"12a45678-5", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.in), "rut %q", tt.in)
	}
}

func TestCheckDigitSpecialCases(t *testing.T) {
	dv, ok := CheckDigit("6")
	assert.True(t, ok)
	assert.Equal(t, "K", dv)

	// 11 - (sum % 11) == 11 maps to "0".
	dv, ok = CheckDigit("14")
	assert.True(t, ok)
	assert.Equal(t, "0", dv)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.345.678-5", Format("123456785"))
	assert.Equal(t, "1.234.567-4", Format("1234567-4"))
	assert.Equal(t, "999-K", Format("999k"))
	assert.Equal(t, "5", Format("5"))
}
