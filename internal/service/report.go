package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"attendance-service/internal/apperr"
	"attendance-service/internal/models"
	"attendance-service/pkg/civildate"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MonthlyReport lists a professor's approved presences in one month.
type MonthlyReport struct {
	Professor   *models.Professor
	Year        int
	Month       time.Month
	Records     []models.AttendanceRecord
	TotalDays   int
	TotalWeeks  int
	GeneratedAt time.Time
}

// Period returns e.g. "Março de 2024".
func (r *MonthlyReport) Period() string {
	return fmt.Sprintf("%s de %d", civildate.MonthName(r.Month), r.Year)
}

type professorGetter interface {
	Get(ctx context.Context, id uint) (*models.Professor, error)
}

type ReportService struct {
	professors professorGetter
	attendance *AttendanceService
	calendar   *civildate.Calendar
	logger     *logrus.Logger
}

func NewReportService(professors *ProfessorService, attendance *AttendanceService, calendar *civildate.Calendar) *ReportService {
	return &ReportService{
		professors: professors,
		attendance: attendance,
		calendar:   calendar,
		logger:     newLogger(),
	}
}

func (s *ReportService) MonthlyReport(ctx context.Context, professorID uint, year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Validationf("month must be between 1 and 12, got %d", month)
	}
	if year < 1900 || year > 9999 {
		return nil, apperr.Validationf("invalid year %d", year)
	}

	professor, err := s.professors.Get(ctx, professorID)
	if err != nil {
		return nil, err
	}

	first, last := civildate.MonthBounds(year, month)
	records, err := s.attendance.ApprovedBetween(ctx, professorID, first, last)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(records))
	for _, rec := range records {
		dates = append(dates, rec.Date)
	}

	report := &MonthlyReport{
		Professor:   professor,
		Year:        year,
		Month:       month,
		Records:     records,
		TotalDays:   len(records),
		TotalWeeks:  civildate.CountWeeks(dates),
		GeneratedAt: s.calendar.Now(),
	}

	s.logger.WithFields(logrus.Fields{
		"professor_id": professorID,
		"period":       fmt.Sprintf("%04d-%02d", year, month),
		"days":         report.TotalDays,
		"weeks":        report.TotalWeeks,
	}).Info("Monthly attendance report built")

	return report, nil
}

// FileName returns the download name of the report. The professor's name is
// reduced to ASCII letters, digits and dashes so it can sit in a header.
func (s *ReportService) FileName(report *MonthlyReport) string {
	return fmt.Sprintf("relatorio_%s_%d_%d.pdf", fileSafeName(report.Professor.Name), int(report.Month), report.Year)
}

func fileSafeName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	parts := make([]string, 0, 4)
	for _, word := range strings.Fields(folded) {
		word = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
				return r
			}
			return -1
		}, word)
		if word != "" {
			parts = append(parts, word)
		}
	}
	if len(parts) == 0 {
		return "professor"
	}
	return strings.Join(parts, "_")
}

// RenderPDF writes report to w as an A4 document.
func (s *ReportService) RenderPDF(report *MonthlyReport, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	content := width - left - right

	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(153, 153, 153)
		pdf.SetDrawColor(221, 221, 221)
		footer := fmt.Sprintf("Gerado em %s %s", civildate.Format(report.GeneratedAt), civildate.FormatClock(report.GeneratedAt))
		pdf.CellFormat(content*0.8, 6, tr(footer), "T", 0, "L", false, 0, "")
		pdf.CellFormat(content*0.2, 6, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "T", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFillColor(246, 246, 246)
	pdf.SetDrawColor(221, 221, 221)
	pdf.SetTextColor(51, 51, 51)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(content, 14, tr("RELATÓRIO DE PRESENÇAS"), "1", 1, "C", true, 0, "")
	pdf.Ln(4)

	matricula := report.Professor.MatriculaValue()
	if matricula == "" {
		matricula = "-"
	}
	department := report.Professor.DepartmentName()
	if department == "" {
		department = "-"
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(content, 8, tr("Professor: "+report.Professor.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(85, 85, 85)
	pdf.CellFormat(content, 6, tr("Matrícula: "+matricula), "", 1, "L", false, 0, "")
	pdf.CellFormat(content, 6, tr("Departamento: "+department), "", 1, "L", false, 0, "")
	pdf.CellFormat(content, 6, tr("Período: "+report.Period()), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(51, 51, 51)
	pdf.SetFont("Helvetica", "BU", 13)
	pdf.CellFormat(content, 8, tr("Registro de Presenças"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.Records) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(85, 85, 85)
		pdf.CellFormat(content, 8, tr("Nenhuma presença registrada no período selecionado."), "", 1, "L", false, 0, "")
	} else {
		s.renderTable(pdf, tr, content, report)
		s.renderSummary(pdf, tr, content, report)
	}

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "failed to render report PDF")
	}
	return nil
}

func (s *ReportService) renderTable(pdf *fpdf.Fpdf, tr func(string) string, content float64, report *MonthlyReport) {
	cols := []float64{content * 0.22, content * 0.30, content * 0.28, content * 0.20}
	header := []string{"Data", "Dia da Semana", "Hora de Registro", "Status"}

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(75, 108, 183)
		pdf.SetDrawColor(58, 83, 155)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range header {
			pdf.CellFormat(cols[i], 8, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	drawHeader()
	for i, rec := range report.Records {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			drawHeader()
		}

		fill := i%2 == 0
		pdf.SetFillColor(249, 249, 249)
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(51, 51, 51)

		registered := s.calendar.Local(rec.RegisteredAt)
		pdf.CellFormat(cols[0], 7, civildate.Format(rec.Date), "", 0, "L", fill, 0, "")
		pdf.CellFormat(cols[1], 7, tr(civildate.WeekdayName(rec.Date.Weekday())), "", 0, "L", fill, 0, "")
		pdf.CellFormat(cols[2], 7, civildate.FormatClock(registered), "", 0, "L", fill, 0, "")
		pdf.SetTextColor(40, 167, 69)
		pdf.CellFormat(cols[3], 7, "Aprovado", "", 1, "L", fill, 0, "")
	}
	pdf.Ln(6)
}

func (s *ReportService) renderSummary(pdf *fpdf.Fpdf, tr func(string) string, content float64, report *MonthlyReport) {
	pdf.SetFillColor(246, 246, 246)
	pdf.SetDrawColor(221, 221, 221)
	pdf.SetTextColor(51, 51, 51)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(content, 10, "RESUMO", "1", 1, "C", true, 0, "")

	rows := []struct {
		label string
		value int
	}{
		{"Total de dias com presença:", report.TotalDays},
		{"Total de semanas com presença:", report.TotalWeeks},
	}

	pdf.SetFillColor(249, 249, 249)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(51, 51, 51)
		pdf.CellFormat(content*0.7, 9, tr("• "+row.label), "", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(75, 108, 183)
		pdf.CellFormat(content*0.3, 9, fmt.Sprintf("%d", row.value), "", 1, "L", true, 0, "")
	}
}
