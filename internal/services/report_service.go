package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/repositories"
)

type reportService struct {
	db               *gorm.DB
	repo             repositories.Repository
	logger           *slog.Logger
	dashboardService DashboardService
}

func NewReportService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, dashboard DashboardService) ReportService {
	return &reportService{
		db:               db,
		repo:             repo,
		logger:           logger,
		dashboardService: dashboard,
	}
}

// ExportSchoolReport renders the principal analytics as an xlsx workbook
// with one sheet per ranking.
func (s *reportService) ExportSchoolReport(ctx context.Context) ([]byte, error) {
	dashboard, err := s.dashboardService.PrincipalDashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build school analytics: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSubjectSheet(f, dashboard); err != nil {
		return nil, err
	}
	if err := s.writeClassSheet(f, dashboard); err != nil {
		return nil, err
	}
	if err := s.writeTeacherSheet(f, dashboard); err != nil {
		return nil, err
	}
	if err := s.writeTopStudentsSheet(f, dashboard); err != nil {
		return nil, err
	}

	// Drop the default sheet and land on the first ranking.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("School report exported",
		"subjects", len(dashboard.SubjectRankings),
		"classes", len(dashboard.ClassRankings),
		"teachers", len(dashboard.TeachersRanked))

	return buf.Bytes(), nil
}

func (s *reportService) writeSubjectSheet(f *excelize.File, dashboard *PrincipalDashboard) error {
	const sheet = "Subject Rankings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Rank", "Subject", "Average Grade"}); err != nil {
		return err
	}
	for i, row := range dashboard.SubjectRankings {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i + 1, row.Subject, row.AverageGrade}); err != nil {
			return err
		}
	}
	return nil
}

func (s *reportService) writeClassSheet(f *excelize.File, dashboard *PrincipalDashboard) error {
	const sheet = "Class Rankings"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Rank", "Class", "Average Grade"}); err != nil {
		return err
	}
	for i, row := range dashboard.ClassRankings {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i + 1, row.ClassLevel, row.AverageGrade}); err != nil {
			return err
		}
	}
	return nil
}

func (s *reportService) writeTeacherSheet(f *excelize.File, dashboard *PrincipalDashboard) error {
	const sheet = "Teachers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Rank", "Name", "Email", "Salary Points"}); err != nil {
		return err
	}
	for i, t := range dashboard.TeachersRanked {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i + 1, t.UserName, t.Email, t.SalaryPoints}); err != nil {
			return err
		}
	}
	return nil
}

func (s *reportService) writeTopStudentsSheet(f *excelize.File, dashboard *PrincipalDashboard) error {
	const sheet = "Top Students"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Rank", "Student", "Class", "Average Grade"}); err != nil {
		return err
	}
	for i, row := range dashboard.TopStudents {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i + 1, row.StudentName, row.ClassLevel, row.AverageGrade}); err != nil {
			return err
		}
	}
	return nil
}
