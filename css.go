package fontsplit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var cssStringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\a `)

// WriteStylesheet writes one @font-face rule for every successful result, in order, separated by a newline. It returns the number of rules written.
func WriteStylesheet(w io.Writer, family string, weight FontWeight, results []SubsetResult) (int, error) {
	b := bufio.NewWriter(w)
	family = cssStringEscaper.Replace(family)

	n := 0
	for _, res := range results {
		if !res.OK() {
			continue
		}
		if 0 < n {
			b.WriteByte('\n')
		}
		filename := cssStringEscaper.Replace(filepath.Base(res.Path))
		fmt.Fprintf(b, "@font-face {\n")
		fmt.Fprintf(b, "  font-family: '%s';\n", family)
		fmt.Fprintf(b, "  font-style: normal;\n")
		fmt.Fprintf(b, "  font-weight: %v;\n", weight)
		fmt.Fprintf(b, "  font-display: swap;\n")
		fmt.Fprintf(b, "  src: url('./%s') format('woff2');\n", filename)
		fmt.Fprintf(b, "  unicode-range: %s;\n", res.Range)
		fmt.Fprintf(b, "}")
		n++
	}
	return n, b.Flush()
}

// StylesheetFilename returns the file name of the stylesheet for a font.
func StylesheetFilename(fontPath string) string {
	return SafeName(fontPath) + ".css"
}

// WriteStylesheetFile writes the stylesheet to filename, see WriteStylesheet. The file is written even if no result succeeded.
func WriteStylesheetFile(filename, family string, weight FontWeight, results []SubsetResult) (int, error) {
	w, err := os.Create(filename)
	if err != nil {
		return 0, err
	}
	n, err := WriteStylesheet(w, family, weight, results)
	if err != nil {
		w.Close()
		return 0, err
	} else if err := w.Close(); err != nil {
		return 0, err
	}
	return n, nil
}
