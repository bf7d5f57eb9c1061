package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
	appErrors "github.com/noah-isme/sma-retention-api/pkg/errors"
	"github.com/noah-isme/sma-retention-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportResult is a rendered report ready for download.
type ReportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	GeneratedAt time.Time
	RowCount    int
}

type atRiskLister interface {
	ListAtRisk(ctx context.Context) ([]models.Student, error)
}

// ReportService renders at-risk student reports synchronously.
type ReportService struct {
	students atRiskLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(students atRiskLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students: students,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var atRiskHeaders = []string{
	"Enrollment No", "Name", "Department", "Semester",
	"Attendance %", "CGPA", "Disciplinary Issues", "Risk Level", "Risk Factors",
}

// AtRiskReport renders the current at-risk roster in the requested format.
func (s *ReportService) AtRiskReport(ctx context.Context, format ReportFormat) (*ReportResult, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}

	students, err := s.students.ListAtRisk(ctx)
	if err != nil {
		return nil, fmt.Errorf("load at-risk students: %w", err)
	}

	dataset := export.Dataset{Headers: atRiskHeaders, Rows: make([]map[string]string, 0, len(students))}
	for _, student := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Enrollment No":       student.EnrollmentNo,
			"Name":                student.FullName,
			"Department":          student.Department,
			"Semester":            strconv.Itoa(student.Semester),
			"Attendance %":        strconv.FormatFloat(student.AttendancePercent, 'f', 1, 64),
			"CGPA":                strconv.FormatFloat(student.CurrentCGPA, 'f', 2, 64),
			"Disciplinary Issues": strconv.Itoa(student.DisciplinaryIssues),
			"Risk Level":          string(student.DropoutRisk),
			"Risk Factors":        student.RiskReason,
		})
	}

	now := s.now()
	stamp := now.Format("2006-01-02")
	result := &ReportResult{GeneratedAt: now, RowCount: len(students)}

	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, fmt.Errorf("render csv report: %w", err)
		}
		result.Data = data
		result.ContentType = "text/csv"
		result.Filename = fmt.Sprintf("at-risk-students-%s.csv", stamp)
	case ReportFormatPDF:
		data, err := s.pdf.Render(dataset, "At-Risk Students Report")
		if err != nil {
			return nil, fmt.Errorf("render pdf report: %w", err)
		}
		result.Data = data
		result.ContentType = "application/pdf"
		result.Filename = fmt.Sprintf("at-risk-students-%s.pdf", stamp)
	}

	s.logger.Info("at-risk report generated",
		zap.String("format", strings.ToLower(string(format))),
		zap.Int("rows", result.RowCount),
	)
	return result, nil
}
