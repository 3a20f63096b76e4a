// Package report renders the downloadable screening report.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shravani77747/ASD-Screening/internal/screening"
)

const (
	Filename   = "ASD_Screening_Report.pdf"
	MIMEType   = "application/pdf"
	Title      = "Autism Spectrum Disorder Screening Report"
	DateLayout = "02-01-2006"
)

// Data is everything printed on the report.
type Data struct {
	Name        string
	Date        time.Time
	Age         int
	Gender      string
	LabelText   string
	Probability float64
	Severity    string
	Guidance    string
	Disclaimer  string
}

// NewData builds report content from a finished screening.
func NewData(d screening.Demographics, r screening.Result, disclaimer string) Data {
	return Data{
		Name:        d.Name,
		Date:        r.CompletedAt,
		Age:         d.Age,
		Gender:      string(d.Gender),
		LabelText:   r.LabelText,
		Probability: r.Probability,
		Severity:    string(r.Severity),
		Guidance:    r.Guidance,
		Disclaimer:  disclaimer,
	}
}

// FormattedDate returns the report date as dd-mm-yyyy.
func (d Data) FormattedDate() string {
	return d.Date.Format(DateLayout)
}

// FormattedProbability returns the probability with two decimals and a percent sign.
func (d Data) FormattedProbability() string {
	return FormatProbability(d.Probability)
}

func FormatProbability(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// RenderError means the document could not be produced. The screening
// result is unaffected.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render report: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer produces the report document bytes.
type Renderer interface {
	Render(ctx context.Context, data Data) ([]byte, error)
}
