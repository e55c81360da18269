package fontsplit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ReadRanges reads a reference stylesheet and returns its unicode-range values, see ExtractRanges.
func ReadRanges(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReferenceNotFound, err)
	}
	defer f.Close()

	ranges, err := ExtractRanges(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return ranges, nil
}

// ExtractRanges returns the unicode-range values of all @font-face blocks in a stylesheet. Values are returned verbatim with surrounding whitespace trimmed, in the order in which they first appear. Repeated values are returned only once. When a block declares unicode-range more than once, the last declaration is used. It returns ErrNoRangesFound if the stylesheet has none.
func ExtractRanges(r io.Reader) ([]string, error) {
	l := css.NewLexer(parse.NewInput(r))

	ranges := []string{}
	seen := map[string]bool{}

	depth := 0
	faceDepth := 0      // depth of the current @font-face block, zero if outside
	atFontFace := false // after @font-face, before its block
	declStart := false  // at the start of a declaration
	name := ""          // property name of the current declaration
	capturing := false  // inside a unicode-range value
	faceRange := ""     // unicode-range of the current block
	value := &strings.Builder{}

	endDeclaration := func() {
		if capturing {
			if v := strings.TrimSpace(value.String()); v != "" {
				faceRange = v
			}
			value.Reset()
			capturing = false
		}
		name = ""
		declStart = true
	}
	endFontFace := func() {
		endDeclaration()
		if faceRange != "" && !seen[faceRange] {
			seen[faceRange] = true
			ranges = append(ranges, faceRange)
		}
		faceRange = ""
		faceDepth = 0
	}

	for {
		tt, data := l.Next()
		inBlock := faceDepth != 0 && depth == faceDepth
		switch tt {
		case css.ErrorToken:
			if l.Err() != io.EOF {
				return nil, l.Err()
			}
			if faceDepth != 0 {
				endFontFace()
			}
			if len(ranges) == 0 {
				return nil, ErrNoRangesFound
			}
			return ranges, nil
		case css.AtKeywordToken:
			if faceDepth == 0 {
				atFontFace = bytes.EqualFold(data, []byte("@font-face"))
			} else if capturing {
				value.Write(data)
			}
		case css.LeftBraceToken:
			depth++
			if atFontFace {
				faceDepth = depth
				declStart = true
				atFontFace = false
			} else if capturing {
				value.Write(data)
			}
		case css.RightBraceToken:
			if inBlock {
				endFontFace()
			} else if capturing {
				value.Write(data)
			}
			if 0 < depth {
				depth--
			}
		case css.SemicolonToken:
			if inBlock {
				endDeclaration()
			} else if capturing {
				value.Write(data)
			} else if faceDepth == 0 {
				atFontFace = false
			}
		case css.CommentToken:
			// skip
		default:
			if faceDepth == 0 {
				continue
			} else if capturing {
				value.Write(data)
			} else if inBlock && declStart {
				if tt == css.IdentToken && name == "" {
					name = string(data)
				} else if tt == css.ColonToken && name != "" {
					capturing = strings.EqualFold(name, "unicode-range")
					declStart = false
				} else if tt != css.WhitespaceToken {
					declStart = false
				}
			}
		}
	}
}
