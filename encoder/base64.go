package encoder

import "fmt"

// base64Alphabet maps 6-bit values 0..63 to their object-file characters.
const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Base64 renders a 12-bit word as two characters, high 6-bit half first.
func Base64(w Word) string {
	w &= WordMask
	return string([]byte{base64Alphabet[w>>6], base64Alphabet[w&0x3F]})
}

// ParseBase64 converts a two-character object-file token back to its
// word. It is the inverse of Base64.
func ParseBase64(s string) (Word, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("base-64 word must be two characters, got %q", s)
	}
	hi, err := sextet(s[0])
	if err != nil {
		return 0, err
	}
	lo, err := sextet(s[1])
	if err != nil {
		return 0, err
	}
	return hi<<6 | lo, nil
}

func sextet(c byte) (Word, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return Word(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return Word(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return Word(c-'0') + 52, nil
	case c == '+':
		return 62, nil
	case c == '/':
		return 63, nil
	}
	return 0, fmt.Errorf("invalid base-64 character %q", c)
}
