package hexconv

// Halfbyte maps an ASCII character to its hex value. Characters which aren't hex digits
// map to invalid.
var Halfbyte [256]byte

const invalid = 0xff

func init() {
	for i := range Halfbyte {
		Halfbyte[i] = invalid
	}

	for c := byte('0'); c <= '9'; c++ {
		Halfbyte[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		Halfbyte[c] = c - 'a' + 10
		Halfbyte[c-'a'+'A'] = c - 'a' + 10
	}
}

// Parse returns the value of a single hex digit and whether the char is a hex digit at all.
func Parse(char byte) (value byte, ok bool) {
	value = Halfbyte[char]
	return value, value != invalid
}

// Pair decodes two hex digits into a single byte.
func Pair(hi, lo byte) (byte, bool) {
	h, okh := Parse(hi)
	l, okl := Parse(lo)

	return h<<4 | l, okh && okl
}
