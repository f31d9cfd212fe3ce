package abx

import (
	"strconv"
	"strings"
)

// Attribute type inference for the XML-to-ABX direction. Textual XML
// carries no type information, so attribute values are classified by
// shape, first match wins:
//
//	"true"/"false"                    -> boolean
//	0x-prefixed hex digits            -> INT_HEX or LONG_HEX by length
//	decimal digits, under 15 chars    -> INT, widening to LONG
//	digits with one '.', under 20     -> FLOAT
//	short, no space or dash           -> interned string
//	anything else                     -> plain string
//
// Values at or past a length cap never enter the numeric branches:
// certificate keys and other digit blobs stay strings. A parse
// failure inside a branch falls back to a plain string (the integer
// branch widens to 64 bits first). The thresholds and fallback rules
// match the reference encoder exactly, so re-encoding a decoded
// document reproduces the same value types. Inference never produces
// DOUBLE; that type is reachable only through the explicit Serializer
// API.

// writeInferredAttribute classifies value and writes it through the
// matching typed writer.
func writeInferredAttribute(s *Serializer, name, value string) error {
	switch {
	case value == "true":
		return s.AttributeBool(name, true)
	case value == "false":
		return s.AttributeBool(name, false)

	case isHexNumber(value):
		digits := value[2:]
		if len(value) <= 10 {
			v, err := strconv.ParseInt(digits, 16, 32)
			if err != nil {
				// Out of int32 range ("0xffffffff"): kept as text.
				return s.Attribute(name, value)
			}
			return s.AttributeIntHex(name, int32(v))
		}
		v, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return s.Attribute(name, value)
		}
		return s.AttributeLongHex(name, v)

	case isNumeric(value) && len(value) < 15:
		if v, err := strconv.ParseInt(value, 10, 32); err == nil {
			return s.AttributeInt(name, int32(v))
		}
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			return s.AttributeLong(name, v)
		}
		return s.Attribute(name, value)

	case isDecimalFraction(value) && len(value) < 20:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return s.Attribute(name, value)
		}
		return s.AttributeFloat(name, float32(v))

	case len(value) < 50 && !strings.ContainsAny(value, " -"):
		return s.AttributeInterned(name, value)

	default:
		return s.Attribute(name, value)
	}
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

// isHexNumber reports whether s is "0x" or "0X" followed by at least
// one hex digit.
func isHexNumber(s string) bool {
	if len(s) < 3 || s[0] != '0' || (s[1] != 'x' && s[1] != 'X') {
		return false
	}
	for i := 2; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

// isNumeric reports whether s is decimal digits with an optional
// leading minus. A bare "-" passes here and falls back to a plain
// string when the parse fails.
func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 0 && s[i] == '-' {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isHexString reports whether every character of s is a hex digit.
func isHexString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

// isDecimalFraction reports whether s looks like a decimal fraction:
// exactly one '.', an optional leading minus, digits everywhere else,
// and not a string of hex digits.
func isDecimalFraction(s string) bool {
	if strings.Count(s, ".") != 1 || isHexString(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch {
		case i == 0 && s[i] == '-':
		case s[i] == '.':
		case s[i] >= '0' && s[i] <= '9':
		default:
			return false
		}
	}
	return true
}
