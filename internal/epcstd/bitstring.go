package epcstd

import "fmt"

// EncodeBool encodes a single flag bit.
func EncodeBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// EncodeInt encodes value as an n-bit fixed-width binary string,
// most-significant bit first.
func EncodeInt(value uint64, n int) string {
	return fmt.Sprintf("%0*b", n, value)
}

// EncodeByte encodes an 8-bit value.
func EncodeByte(v uint8) string {
	return EncodeInt(uint64(v), 8)
}

// EncodeWord encodes a 16-bit value.
func EncodeWord(v uint16) string {
	return EncodeInt(uint64(v), 16)
}

// EncodeEBV encodes value using Gen2's extensible bit vector format:
// the value is split into 7-bit groups, most-significant group first,
// each prefixed with a continuation bit (1 if more groups follow, 0 on
// the final group).
func EncodeEBV(value uint32) string {
	return encodeEBV(value, true)
}

func encodeEBV(value uint32, finalGroup bool) string {
	prefix := "0"
	if !finalGroup {
		prefix = "1"
	}
	if value < 128 {
		return prefix + fmt.Sprintf("%07b", value)
	}
	return encodeEBV(value>>7, false) + encodeEBV(value%128, finalGroup)
}

// EncodeHexString encodes a hex digit string as a bit string, 4 bits per
// nibble, most-significant nibble first.
func EncodeHexString(hex string) (string, error) {
	out := make([]byte, 0, len(hex)*4)
	for _, c := range hex {
		var v uint64
		switch {
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			v = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v = uint64(c-'A') + 10
		default:
			return "", fmt.Errorf("epcstd: invalid hex digit %q", c)
		}
		out = append(out, []byte(EncodeInt(v, 4))...)
	}
	return string(out), nil
}
