package report

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/shravani77747/ASD-Screening/internal/screening"
)

const (
	gaugeWidth  = 360
	gaugeHeight = 200
	gaugeRadius = 140
	gaugeStroke = 26
)

// gaugeFont is parsed once; faces are not safe for concurrent use and are
// created per drawing.
var gaugeFont = mustParseFont(goregular.TTF)

func mustParseFont(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded font: %v", err))
	}
	return f
}

func newFace(size float64) font.Face {
	return truetype.NewFace(gaugeFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

type rgb struct{ r, g, b float64 }

var severityColors = map[screening.Severity]rgb{
	screening.SeverityLow:      {0.30, 0.69, 0.31},
	screening.SeverityModerate: {1.00, 0.60, 0.00},
	screening.SeverityHigh:     {0.90, 0.22, 0.21},
}

// Gauge draws a half-dial PNG filled to the probability (0-100) and
// coloured by severity band.
func Gauge(probability float64) ([]byte, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 100 {
		return nil, fmt.Errorf("probability %v outside 0..100", probability)
	}

	dc := gg.NewContext(gaugeWidth, gaugeHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	cx, cy := float64(gaugeWidth)/2, float64(gaugeHeight)-20
	dc.SetLineCapButt()
	dc.SetLineWidth(gaugeStroke)

	dc.SetRGB(0.90, 0.90, 0.90)
	dc.DrawArc(cx, cy, gaugeRadius, math.Pi, 2*math.Pi)
	dc.Stroke()

	if probability > 0 {
		c := severityColors[screening.ClassifySeverity(probability)]
		dc.SetRGB(c.r, c.g, c.b)
		dc.DrawArc(cx, cy, gaugeRadius, math.Pi, math.Pi+math.Pi*probability/100)
		dc.Stroke()
	}

	// band boundaries
	dc.SetRGB(0.35, 0.35, 0.35)
	dc.SetLineWidth(2)
	for _, p := range []float64{screening.ModerateThreshold, screening.HighThreshold} {
		a := math.Pi + math.Pi*p/100
		inner, outer := gaugeRadius-gaugeStroke/2-4.0, gaugeRadius+gaugeStroke/2+4.0
		dc.DrawLine(cx+inner*math.Cos(a), cy+inner*math.Sin(a), cx+outer*math.Cos(a), cy+outer*math.Sin(a))
		dc.Stroke()
	}

	dc.SetRGB(0.13, 0.13, 0.13)
	dc.SetFontFace(newFace(34))
	dc.DrawStringAnchored(FormatProbability(probability), cx, cy-36, 0.5, 0.5)
	dc.SetFontFace(newFace(16))
	dc.DrawStringAnchored(string(screening.ClassifySeverity(probability)), cx, cy-2, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
