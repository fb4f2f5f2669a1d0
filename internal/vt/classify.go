// Package vt classifies terminal escape sequences by boundary, not meaning.
//
// The classifier answers one question: given the byte after an ESC
// introducer, where does the sequence end and what family is it? It never
// interprets what a sequence does - cursor movement, colors, and mode
// changes are the connected terminals' problem.
package vt

// ESC is the escape introducer byte that opens every sequence we classify.
const ESC = 0x1b

// UnknownLookahead is how many bytes past the introducer are consumed when
// no recognizer matches. Matches the plain-text preview width so the
// operator sees the same amount of context either way.
const UnknownLookahead = 15

// Category tags an escape sequence family.
type Category string

const (
	// CategoryCSI is a Control Sequence Introducer (ESC [ ... final byte).
	CategoryCSI Category = "CSI"

	// CategoryOSC is an Operating System Command (ESC ] ... BEL or ST).
	CategoryOSC Category = "OSC"

	// CategoryPM is a Privacy Message (ESC ^ ... BEL or ST).
	CategoryPM Category = "PM"

	// CategoryDCS is a Device Control String (ESC P ... BEL or ST).
	CategoryDCS Category = "DCS"

	// CategoryAPC is an Application Program Command (ESC _ ... BEL or ST).
	CategoryAPC Category = "APC"

	// CategoryDEC is a DEC private two-byte sequence (ESC # digit).
	CategoryDEC Category = "DEC"

	// CategoryCharset is a character-set control sequence (ESC % x).
	CategoryCharset Category = "CHR"

	// CategoryGraphic is a graphic character set designation (ESC ( B etc).
	CategoryGraphic Category = "GRA"

	// CategoryUnknown is reported when no recognizer matches.
	CategoryUnknown Category = "unknown"
)

// A recognizer matches one sequence family starting at the byte after the
// introducer. Recognizers are pure functions of (payload, pos): on a match
// they return the end offset (exclusive), otherwise ok=false.
type recognizer struct {
	cat   Category
	match func(payload []byte, pos int) (end int, ok bool)
}

// recognizers is tried in order; the first match wins. The order is part
// of the classification contract and never changes at runtime.
var recognizers = []recognizer{
	{CategoryCSI, matchCSI},
	{CategoryOSC, stringSequence(']')},
	{CategoryPM, stringSequence('^')},
	{CategoryDCS, stringSequence('P')},
	{CategoryAPC, stringSequence('_')},
	{CategoryDEC, matchDEC},
	{CategoryCharset, matchCharset},
	{CategoryGraphic, matchGraphic},
}

// Classify determines the category and end offset of the escape sequence
// whose introducer byte sits at payload[pos-1]. The returned end offset is
// exclusive and always satisfies pos <= end <= len(payload).
//
// When no recognizer matches, ok is false and a fixed lookahead window of
// UnknownLookahead bytes is consumed (clipped at the end of the payload)
// so the cursor can keep making progress. Callers should surface a
// diagnostic but treat the miss as non-fatal.
func Classify(payload []byte, pos int) (cat Category, end int, ok bool) {
	for _, r := range recognizers {
		if end, ok := r.match(payload, pos); ok {
			return r.cat, end, true
		}
	}

	end = pos + UnknownLookahead
	if end > len(payload) {
		end = len(payload)
	}
	return CategoryUnknown, end, false
}

// matchCSI matches ESC [ params intermediates final, where parameter bytes
// are 0x30-0x3F, intermediate bytes 0x20-0x2F, and the final byte is in
// 0x40-0x7E. A sequence that runs off the end of the payload before its
// final byte does not match.
func matchCSI(payload []byte, pos int) (int, bool) {
	if pos >= len(payload) || payload[pos] != '[' {
		return 0, false
	}

	i := pos + 1
	for i < len(payload) && payload[i] >= 0x30 && payload[i] <= 0x3f {
		i++
	}
	for i < len(payload) && payload[i] >= 0x20 && payload[i] <= 0x2f {
		i++
	}
	if i < len(payload) && payload[i] >= 0x40 && payload[i] <= 0x7e {
		return i + 1, true
	}
	return 0, false
}

// stringSequence returns a recognizer for the string-typed sequences
// (OSC, PM, DCS, APC): a one-byte opener, then arbitrary bytes until a
// BEL (0x07) or the two-byte string terminator ESC \.
func stringSequence(opener byte) func(payload []byte, pos int) (int, bool) {
	return func(payload []byte, pos int) (int, bool) {
		if pos >= len(payload) || payload[pos] != opener {
			return 0, false
		}

		for i := pos + 1; i < len(payload); i++ {
			switch payload[i] {
			case 0x07:
				return i + 1, true
			case ESC:
				if i+1 < len(payload) && payload[i+1] == '\\' {
					return i + 2, true
				}
			}
		}
		return 0, false
	}
}

// matchDEC matches the DEC private two-byte sequences ESC # digit
// (DECDHL, DECSWL, DECDWL, DECALN).
func matchDEC(payload []byte, pos int) (int, bool) {
	if pos+1 < len(payload) && payload[pos] == '#' &&
		payload[pos+1] >= '0' && payload[pos+1] <= '9' {
		return pos + 2, true
	}
	return 0, false
}

// matchCharset matches the character-set controls ESC % x (e.g. ESC % G
// to select UTF-8).
func matchCharset(payload []byte, pos int) (int, bool) {
	if pos+1 < len(payload) && payload[pos] == '%' {
		return pos + 2, true
	}
	return 0, false
}

// matchGraphic matches graphic character set designations: one of
// ( ) * + selecting a G0-G3 slot, followed by a charset identifier.
func matchGraphic(payload []byte, pos int) (int, bool) {
	if pos+1 >= len(payload) {
		return 0, false
	}
	switch payload[pos] {
	case '(', ')', '*', '+':
	default:
		return 0, false
	}
	switch payload[pos+1] {
	case '0', '1', '2', 'A', 'B':
		return pos + 2, true
	}
	return 0, false
}
