package fontsplit

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tdewolff/font"
	"github.com/tdewolff/parse/v2"
)

// DefaultWeight is the weight declared for static fonts and whenever detection fails.
const DefaultWeight = 400

// FontWeight is the CSS font-weight of a font, either a single weight or the range of a variable font's weight axis.
type FontWeight struct {
	Min, Max int
	Variable bool
}

// StaticWeight returns the weight of a non-variable font.
func StaticWeight(weight int) FontWeight {
	return FontWeight{Min: weight, Max: weight}
}

// ParseFontWeight parses a font-weight value such as "700" or "100 900".
func ParseFontWeight(s string) (FontWeight, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || 2 < len(fields) {
		return FontWeight{}, fmt.Errorf("%w: %q", ErrInvalidWeight, s)
	}
	ws := make([]int, len(fields))
	for i, field := range fields {
		w, err := strconv.Atoi(field)
		if err != nil || w < 1 || 1000 < w {
			return FontWeight{}, fmt.Errorf("%w: %q", ErrInvalidWeight, s)
		}
		ws[i] = w
	}
	if len(ws) == 1 {
		return StaticWeight(ws[0]), nil
	} else if ws[1] < ws[0] {
		return FontWeight{}, fmt.Errorf("%w: %q", ErrInvalidWeight, s)
	}
	return FontWeight{Min: ws[0], Max: ws[1], Variable: true}, nil
}

// String returns the value of the font-weight declaration.
func (w FontWeight) String() string {
	if w.Variable {
		return fmt.Sprintf("%d %d", w.Min, w.Max)
	}
	return strconv.Itoa(w.Min)
}

// Axis is a design variation axis of a variable font.
type Axis struct {
	Tag               string
	Min, Default, Max float64
}

// MetadataReader gives access to the font metadata needed to determine its weight.
type MetadataReader interface {
	// WeightAxis returns the 'wght' axis of the font, or false if the font has none.
	WeightAxis(filename string) (Axis, bool, error)
}

// InspectWeight returns the font-weight to declare for a font. It returns the variable weight range of the 'wght' axis if present, and DefaultWeight otherwise. When the metadata cannot be read it returns DefaultWeight together with an error wrapping ErrWeightDetection; the returned weight is always usable.
func InspectWeight(reader MetadataReader, filename string) (weight FontWeight, err error) {
	defer func() {
		if r := recover(); r != nil {
			weight = StaticWeight(DefaultWeight)
			err = fmt.Errorf("%w: %v", ErrWeightDetection, r)
		}
	}()

	axis, ok, err := reader.WeightAxis(filename)
	if err != nil {
		return StaticWeight(DefaultWeight), fmt.Errorf("%w: %v", ErrWeightDetection, err)
	} else if !ok {
		return StaticWeight(DefaultWeight), nil
	}

	lo, hi := int(math.Round(axis.Min)), int(math.Round(axis.Max))
	if hi < lo || lo < 1 || 1000 < hi {
		return StaticWeight(DefaultWeight), fmt.Errorf("%w: bad wght axis range %v-%v", ErrWeightDetection, axis.Min, axis.Max)
	}
	return FontWeight{Min: lo, Max: hi, Variable: true}, nil
}

// SFNTReader reads font metadata from TTF, OTF, TTC, OTC, WOFF, WOFF2 and EOT files.
type SFNTReader struct {
	Index int // index into a font collection
}

// WeightAxis implements MetadataReader.
func (reader SFNTReader) WeightAxis(filename string) (Axis, bool, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return Axis{}, false, err
	} else if b, err = font.ToSFNT(b); err != nil {
		return Axis{}, false, err
	}

	fvar, ok, err := sfntTable(b, reader.Index, "fvar")
	if err != nil || !ok {
		return Axis{}, false, err
	}
	axes, err := parseFvarAxes(fvar)
	if err != nil {
		return Axis{}, false, err
	}
	for _, axis := range axes {
		if axis.Tag == "wght" {
			return axis, true, nil
		}
	}
	return Axis{}, false, nil
}

// sfntTable returns the raw data of the table with the given tag from the table directory.
func sfntTable(b []byte, index int, tag string) ([]byte, bool, error) {
	if len(b) < 12 {
		return nil, false, font.ErrInvalidFontData
	}

	dir := b
	if string(b[:4]) == "ttcf" {
		r := parse.NewBinaryReaderBytes(b[4:])
		_ = r.ReadUint32() // majorVersion and minorVersion
		numFonts := r.ReadUint32()
		if index < 0 || numFonts <= uint32(index) || uint32(len(b)-12)/4 < numFonts {
			return nil, false, fmt.Errorf("bad font index %d", index)
		}
		offset := binary.BigEndian.Uint32(b[12+4*index:])
		if uint32(len(b)) < offset || uint32(len(b))-offset < 12 {
			return nil, false, font.ErrInvalidFontData
		}
		dir = b[offset:]
	}

	r := parse.NewBinaryReaderBytes(dir)
	_ = r.ReadString(4) // sfntVersion
	numTables := int(r.ReadUint16())
	_ = r.ReadBytes(6)
	if len(dir) < 12+16*numTables {
		return nil, false, font.ErrInvalidFontData
	}
	for i := 0; i < numTables; i++ {
		tableTag := r.ReadString(4)
		_ = r.ReadUint32() // checksum
		offset := r.ReadUint32()
		length := r.ReadUint32()
		if tableTag != tag {
			continue
		} else if uint32(len(b)) < offset || uint32(len(b))-offset < length {
			return nil, false, fmt.Errorf("%s: %w", tag, font.ErrInvalidFontData)
		}
		return b[offset : offset+length], true, nil
	}
	return nil, false, nil
}

func parseFvarAxes(b []byte) ([]Axis, error) {
	if len(b) < 16 {
		return nil, fmt.Errorf("fvar: bad table")
	}

	r := parse.NewBinaryReaderBytes(b)
	majorVersion := r.ReadUint16()
	_ = r.ReadUint16() // minorVersion
	axesArrayOffset := int(r.ReadUint16())
	_ = r.ReadUint16() // reserved
	axisCount := int(r.ReadUint16())
	axisSize := int(r.ReadUint16())
	if majorVersion != 1 {
		return nil, fmt.Errorf("fvar: bad version")
	} else if axisSize < 20 || len(b) < axesArrayOffset+axisCount*axisSize {
		return nil, fmt.Errorf("fvar: bad table")
	}

	axes := make([]Axis, axisCount)
	for i := range axes {
		r := parse.NewBinaryReaderBytes(b[axesArrayOffset+i*axisSize:])
		axes[i].Tag = r.ReadString(4)
		axes[i].Min = fixedToFloat(r.ReadUint32())
		axes[i].Default = fixedToFloat(r.ReadUint32())
		axes[i].Max = fixedToFloat(r.ReadUint32())
	}
	return axes, nil
}

// fixedToFloat converts a 16.16 fixed point number.
func fixedToFloat(v uint32) float64 {
	return float64(int32(v)) / 65536.0
}
