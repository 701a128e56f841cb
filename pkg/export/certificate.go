package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Certificate holds the printable fields of a completion certificate.
type Certificate struct {
	SchoolName  string
	StudentName string
	CourseName  string
	NCLevel     string
	Number      string
	IssuedAt    time.Time
	Adviser     string
}

// CertificateRenderer draws single page landscape certificates.
type CertificateRenderer struct{}

func NewCertificateRenderer() *CertificateRenderer {
	return &CertificateRenderer{}
}

func (r *CertificateRenderer) Render(c Certificate) ([]byte, error) {
	if strings.TrimSpace(c.Number) == "" {
		return nil, fmt.Errorf("certificate: number required")
	}
	if strings.TrimSpace(c.StudentName) == "" {
		return nil, fmt.Errorf("certificate: student name required")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate "+c.Number, true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	w, h := pdf.GetPageSize()
	pdf.SetLineWidth(1.2)
	pdf.Rect(10, 10, w-20, h-20, "D")
	pdf.SetLineWidth(0.3)
	pdf.Rect(14, 14, w-28, h-28, "D")

	line := func(y float64, style string, size float64, text string) {
		pdf.SetFont("Times", style, size)
		pdf.SetXY(20, y)
		pdf.CellFormat(w-40, size*0.6, tr(text), "", 0, "C", false, 0, "")
	}

	if c.SchoolName != "" {
		line(30, "B", 20, strings.ToUpper(c.SchoolName))
	}
	line(52, "B", 32, "Certificate of Completion")
	line(75, "I", 14, "This certifies that")
	line(90, "B", 26, c.StudentName)
	line(112, "I", 14, "has satisfactorily completed the training program")
	line(124, "B", 18, c.CourseName)
	if c.NCLevel != "" {
		line(138, "", 14, "National Certificate Level "+c.NCLevel)
	}

	issued := c.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	pdf.SetFont("Times", "", 11)
	pdf.SetXY(25, h-40)
	pdf.CellFormat(100, 6, tr("Certificate No. "+c.Number), "", 2, "L", false, 0, "")
	pdf.CellFormat(100, 6, "Issued "+issued.Format("January 2, 2006"), "", 0, "L", false, 0, "")
	if c.Adviser != "" {
		pdf.Line(w-125, h-42, w-25, h-42)
		pdf.SetXY(w-125, h-40)
		pdf.CellFormat(100, 6, tr(c.Adviser), "", 2, "C", false, 0, "")
		pdf.CellFormat(100, 6, "Training Adviser", "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("certificate: %w", err)
	}
	return buf.Bytes(), nil
}
