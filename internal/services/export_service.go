package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CSCORE-2025/cscore-web/internal/models"
)

// ExportService renders the submissions list of an assignment as an xlsx
// workbook for teachers to download.
type ExportService interface {
	ExportSubmissions(ctx context.Context, token string, assignmentID int64) (*bytes.Buffer, string, error)
}

type exportService struct {
	assignments AssignmentService
	logger      *slog.Logger
}

func NewExportService(assignments AssignmentService, logger *slog.Logger) ExportService {
	return &exportService{
		assignments: assignments,
		logger:      logger,
	}
}

func (s *exportService) ExportSubmissions(ctx context.Context, token string, assignmentID int64) (*bytes.Buffer, string, error) {
	submissions, err := s.assignments.ListSubmissions(ctx, token, assignmentID)
	if err != nil {
		return nil, "", err
	}

	buf, err := buildSubmissionsWorkbook(submissions)
	if err != nil {
		s.logger.Error("failed to build submissions workbook", "assignment_id", assignmentID, "error", err)
		return nil, "", fmt.Errorf("failed to build export: %w", err)
	}

	filename := fmt.Sprintf("assignment_%d_submissions_%s.xlsx",
		assignmentID, time.Now().Format("20060102_150405"))
	return buf, filename, nil
}

func buildSubmissionsWorkbook(submissions []models.SubmissionSummary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"#", "Student ID", "Student Name", "Student Code", "Status", "Score", "Language", "Submitted At"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, sub := range submissions {
		row := i + 2
		values := []interface{}{
			i + 1,
			sub.StudentID,
			sub.StudentName,
			sub.StudentCode,
			sub.Status,
			scoreCell(sub.Score),
			sub.Language,
			submittedAtCell(sub.SubmittedAt),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	return f.WriteToBuffer()
}

func scoreCell(score *float64) interface{} {
	if score == nil {
		return ""
	}
	return *score
}

func submittedAtCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
