package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/enrollment-portal-api/internal/models"
	appErrors "github.com/noah-isme/enrollment-portal-api/pkg/errors"
	"github.com/noah-isme/enrollment-portal-api/pkg/export"
)

// ExportFormat selects the worklist rendering.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type pendingWorklist interface {
	GetPendingCompletionApprovals(ctx context.Context) ([]models.PendingCompletion, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

var worklistHeaders = []string{"Enrollment", "ULI", "Student", "Course", "NC Level", "Adviser", "Training", "Completed"}

// ExportService renders the pending completion worklist for offline review.
type ExportService struct {
	worklist pendingWorklist
	csv      csvRenderer
	pdf      pdfRenderer
	clock    func() time.Time
}

func NewExportService(worklist pendingWorklist, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{worklist: worklist, csv: csv, pdf: pdf, clock: time.Now}
}

// PendingCompletions renders the worklist in the requested format.
func (s *ExportService) PendingCompletions(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	format = ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	items, err := s.worklist.GetPendingCompletionApprovals(ctx)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: worklistHeaders}
	for _, item := range items {
		data.Append(
			fmt.Sprintf("%d", item.EnrollmentID),
			item.StudentULI,
			item.StudentName,
			item.CourseName,
			item.NCLevel,
			deref(item.AdviserName),
			trainingWindow(item.TrainingStart, item.TrainingEnd),
			formatDay(item.CompletedAt),
		)
	}

	name := "pending-completions-" + s.clock().Format("20060102")
	var out []byte
	file := &ExportFile{}
	switch format {
	case ExportPDF:
		out, err = s.pdf.Render(data, "Pending completion approvals")
		file.Filename, file.ContentType = name+".pdf", "application/pdf"
	default:
		out, err = s.csv.Render(data)
		file.Filename, file.ContentType = name+".csv", "text/csv"
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	file.Data = out
	return file, nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func trainingWindow(start, end *time.Time) string {
	if start == nil && end == nil {
		return ""
	}
	return formatDay(start) + " to " + formatDay(end)
}
