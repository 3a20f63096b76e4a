package report

import (
	"fmt"
	"unicode"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Report text is set in the Go fonts, embedded as UTF-8 TrueType so that
// characters outside Latin-1 keep their own glyphs.
const fontFamily = "Go"

var fontStyles = []struct {
	style string
	ttf   []byte
}{
	{"", goregular.TTF},
	{"B", gobold.TTF},
	{"I", goitalic.TTF},
}

func addFonts(pdf *fpdf.Fpdf) {
	for _, f := range fontStyles {
		pdf.AddUTF8FontFromBytes(fontFamily, f.style, f.ttf)
	}
}

// UnsupportedTextError reports text containing characters the report font
// has no glyph for.
type UnsupportedTextError struct {
	Field string
	Runes []rune
}

func (e *UnsupportedTextError) Error() string {
	return fmt.Sprintf("%s contains characters the report font cannot draw: %q", e.Field, string(e.Runes))
}

// Printable reports whether every character of s can be drawn in the report.
func Printable(s string) bool {
	return len(missingGlyphs(s)) == 0
}

// missingGlyphs lists, once each, the runes of s absent from the font's cmap.
// All three styles share the regular face's coverage. fpdf writes text as
// UTF-16 without surrogate pairs, so runes beyond the BMP never print.
func missingGlyphs(s string) []rune {
	var missing []rune
	seen := make(map[rune]bool)
	for _, r := range s {
		if r == ' ' || seen[r] {
			continue
		}
		seen[r] = true
		if unicode.IsControl(r) || r > 0xFFFF || gaugeFont.Index(r) == 0 {
			missing = append(missing, r)
		}
	}
	return missing
}

// checkPrintable returns an *UnsupportedTextError for the first field that
// cannot be drawn.
func checkPrintable(data Data) error {
	fields := []struct{ name, value string }{
		{"Name", data.Name},
		{"Gender", data.Gender},
		{"Result", data.LabelText},
		{"Severity Level", data.Severity},
		{"Guidance", data.Guidance},
		{"Disclaimer", data.Disclaimer},
	}
	for _, f := range fields {
		if missing := missingGlyphs(f.value); len(missing) > 0 {
			return &UnsupportedTextError{Field: f.name, Runes: missing}
		}
	}
	return nil
}
