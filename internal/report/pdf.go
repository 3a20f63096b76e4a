package report

import (
	"bytes"
	"context"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// A4 portrait in points.
const (
	marginLeft   = 40
	marginRight  = 40
	marginTop    = 50
	marginBottom = 40

	labelWidth = 110
	lineHeight = 16

	gaugeImageWidth = 180
	gaugeImageName  = "probability-gauge"
)

// PDFRenderer lays the report out on a single A4 page.
type PDFRenderer struct {
	compress bool
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true}
}

func (r *PDFRenderer) Render(ctx context.Context, data Data) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Err: err}
	}

	if err := checkPrintable(data); err != nil {
		return nil, &RenderError{Err: err}
	}

	gauge, err := Gauge(data.Probability)
	if err != nil {
		return nil, &RenderError{Err: err}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetTitle(Title, true)
	pdf.SetCreator("asd-screening", true)
	pdf.SetCreationDate(data.Date)
	pdf.SetModificationDate(data.Date)
	addFonts(pdf)

	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(0, 24, Title, "", 1, "C", false, 0, "")
	pdf.Ln(22)

	field := func(label, value string) {
		pdf.SetFont(fontFamily, "B", 11)
		pdf.CellFormat(labelWidth, lineHeight, label+":", "", 0, "L", false, 0, "")
		pdf.SetFont(fontFamily, "", 11)
		pdf.MultiCell(0, lineHeight, value, "", "L", false)
	}

	field("Name", data.Name)
	field("Date", data.FormattedDate())
	pdf.Ln(11)

	field("Age", strconv.Itoa(data.Age))
	field("Gender", data.Gender)
	pdf.Ln(14)

	field("Result", data.LabelText)
	field("Probability", data.FormattedProbability())
	field("Severity Level", data.Severity)
	pdf.Ln(10)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(gaugeImageName, opts, bytes.NewReader(gauge))
	pageWidth, _ := pdf.GetPageSize()
	h := gaugeImageWidth * float64(gaugeHeight) / float64(gaugeWidth)
	pdf.ImageOptions(gaugeImageName, (pageWidth-gaugeImageWidth)/2, pdf.GetY(), gaugeImageWidth, h, true, opts, 0, "")
	pdf.Ln(18)

	pdf.SetFont(fontFamily, "B", 11)
	pdf.CellFormat(0, lineHeight, "Guidance:", "", 1, "L", false, 0, "")
	pdf.Ln(7)
	pdf.SetFont(fontFamily, "", 11)
	pdf.MultiCell(0, 15, data.Guidance, "", "L", false)

	if data.Disclaimer != "" {
		pdf.Ln(24)
		pdf.SetFont(fontFamily, "I", 9)
		pdf.SetTextColor(110, 110, 110)
		pdf.MultiCell(0, 12, data.Disclaimer, "", "C", false)
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Err: err}
	}
	return buf.Bytes(), nil
}
