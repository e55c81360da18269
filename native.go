package fontsplit

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/tdewolff/font"
)

// Native is an in-process subsetting engine. It keeps only the minimal set of tables, so that OpenType layout features and hinting are always dropped. Output that cannot be read back is reported as an engine failure.
type Native struct {
	Index int // index into a font collection
}

// Subset implements Subsetter.
func (n Native) Subset(ctx context.Context, fontPath, outputPath, selector string, options SubsetOptions) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSubsetEngine, r)
		}
	}()

	if options.Flavor != "" && options.Flavor != "woff2" {
		return fmt.Errorf("%w: unsupported flavor %v", ErrSubsetEngine, options.Flavor)
	}
	ranges, err := ParseSelector(selector)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubsetEngine, err)
	}

	b, err := os.ReadFile(fontPath)
	if err != nil {
		return err
	} else if b, err = font.ToSFNT(b); err != nil {
		return fmt.Errorf("%w: %v: %v", ErrSubsetEngine, fontPath, err)
	}
	sfnt, err := font.ParseSFNT(b, n.Index)
	if err != nil {
		return fmt.Errorf("%w: %v: %v", ErrSubsetEngine, fontPath, err)
	}

	glyphIDs, err := glyphsInRanges(ctx, sfnt, ranges)
	if err != nil {
		return err
	}

	if sfnt.IsCFF {
		sfnt.CFF.SetGlyphNames(nil)
	}
	sfntSubset, err := sfnt.Subset(glyphIDs, font.SubsetOptions{Tables: font.KeepMinTables})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubsetEngine, err)
	}
	if b, err = sfntSubset.WriteWOFF2(); err != nil {
		return fmt.Errorf("%w: %v", ErrSubsetEngine, err)
	} else if err := checkWOFF2(b); err != nil {
		return err
	}
	return os.WriteFile(outputPath, b, 0644)
}

// checkWOFF2 reads back a written font, so that unreadable output is never reported as a subset.
func checkWOFF2(b []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: bad output: %v", ErrSubsetEngine, r)
		}
	}()

	if b, err = font.ToSFNT(b); err != nil {
		return fmt.Errorf("%w: bad output: %v", ErrSubsetEngine, err)
	} else if _, err = font.ParseSFNT(b, 0); err != nil {
		return fmt.Errorf("%w: bad output: %v", ErrSubsetEngine, err)
	}
	return nil
}

// glyphsInRanges returns the sorted glyph IDs mapped from the code points in ranges, always including .notdef.
func glyphsInRanges(ctx context.Context, sfnt *font.SFNT, ranges []CodeRange) ([]uint16, error) {
	glyphMap := map[uint16]bool{}
	glyphMap[0] = true
	for _, ran := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for r := ran.Lo; r <= ran.Hi; r++ {
			if glyphID := sfnt.GlyphIndex(r); glyphID != 0 {
				glyphMap[glyphID] = true
			}
		}
	}

	// convert to sorted list, prevents duplicates
	glyphIDs := make([]uint16, 0, len(glyphMap))
	for glyphID := range glyphMap {
		glyphIDs = append(glyphIDs, glyphID)
	}
	sort.Slice(glyphIDs, func(i, j int) bool { return glyphIDs[i] < glyphIDs[j] })
	return glyphIDs, nil
}
