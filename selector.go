package fontsplit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxCodePoint is the largest valid Unicode code point.
const MaxCodePoint = 0x10FFFF

// CodeRange is an inclusive range of code points.
type CodeRange struct {
	Lo, Hi rune
}

func (r CodeRange) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("U+%04X", r.Lo)
	}
	return fmt.Sprintf("U+%04X-%04X", r.Lo, r.Hi)
}

// Selector returns the code point selector passed to a subsetting engine for a unicode-range value, which is the value with all whitespace removed.
func Selector(unicodeRange string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, unicodeRange)
}

// ParseSelector parses a comma separated list of unicode-range values such as U+0025-00FF, U+4?? or U+0131. The prefix U+ is optional.
func ParseSelector(selector string) ([]CodeRange, error) {
	ranges := []CodeRange{}
	for _, item := range strings.Split(Selector(selector), ",") {
		if item == "" {
			continue
		}
		if 2 <= len(item) && (item[0] == 'U' || item[0] == 'u') && item[1] == '+' {
			item = item[2:]
		}

		var lo, hi int64
		var err error
		if dash := strings.IndexByte(item, '-'); dash != -1 {
			if lo, err = parseCodePoint(item[:dash]); err != nil {
				return nil, err
			}
			if hi, err = parseCodePoint(item[dash+1:]); err != nil {
				return nil, err
			}
		} else if q := strings.IndexByte(item, '?'); q != -1 {
			if strings.Trim(item[q:], "?") != "" {
				return nil, fmt.Errorf("%w: wildcards must be trailing in %q", ErrInvalidSelector, item)
			}
			if lo, err = parseCodePoint(strings.ReplaceAll(item, "?", "0")); err != nil {
				return nil, err
			}
			if hi, err = parseCodePoint(strings.ReplaceAll(item, "?", "F")); err != nil {
				return nil, err
			}
		} else {
			if lo, err = parseCodePoint(item); err != nil {
				return nil, err
			}
			hi = lo
		}
		if hi < lo {
			return nil, fmt.Errorf("%w: U+%04X-%04X", ErrInvalidSelector, lo, hi)
		}
		ranges = append(ranges, CodeRange{rune(lo), rune(hi)})
	}
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSelector)
	}
	return ranges, nil
}

func parseCodePoint(s string) (int64, error) {
	if s == "" || 6 < len(s) || strings.TrimLeft(s, "0123456789abcdefABCDEF") != "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
	} else if v < 0 || MaxCodePoint < v {
		return 0, fmt.Errorf("%w: U+%X out of range", ErrInvalidSelector, v)
	}
	return v, nil
}
