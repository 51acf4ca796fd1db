package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/schoolpulse/homework-service/internal/grading"
	"github.com/schoolpulse/homework-service/internal/models"
	"github.com/schoolpulse/homework-service/internal/repositories"
	"github.com/schoolpulse/homework-service/internal/validator"
)

// topStudentCount caps the leaderboards shown on dashboards.
const topStudentCount = 3

// nowFunc is swapped in tests that pin the clock.
var nowFunc = time.Now

type dashboardService struct {
	db              *gorm.DB
	repo            repositories.Repository
	logger          *slog.Logger
	homeworkService HomeworkService
}

func NewDashboardService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator) DashboardService {
	return &dashboardService{
		db:              db,
		repo:            repo,
		logger:          logger,
		homeworkService: NewHomeworkService(db, repo, logger, v, nil),
	}
}

// ForUser dispatches to the dashboard matching the user's role.
func (s *dashboardService) ForUser(ctx context.Context, userID string) (interface{}, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	switch user.Role {
	case models.RoleStudent:
		return s.StudentDashboard(ctx, userID)
	case models.RoleTeacher:
		return s.TeacherDashboard(ctx, userID)
	case models.RolePrincipal:
		return s.PrincipalDashboard(ctx)
	case models.RoleAdmin:
		return s.AdminDashboard(ctx)
	default:
		return nil, NewValidationError("role", "unknown role", string(user.Role))
	}
}

// StudentDashboard builds the student's standing, growth and workload.
func (s *dashboardService) StudentDashboard(ctx context.Context, studentID string) (*StudentDashboard, error) {
	student, err := s.repo.User().GetByID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return nil, NewPermissionError(studentID, "dashboard", "view", "not a student account")
	}

	avg, err := s.repo.Dashboard().AverageGrade(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	subjects, err := s.repo.Dashboard().SubjectAverages(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	growth, err := s.repo.Dashboard().ScoreSeries(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.repo.Dashboard().ClassLeaderboard(ctx, nil, student.ClassLevel)
	if err != nil {
		return nil, err
	}

	pending, err := s.homeworkService.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	pendingEntries, err := s.withPriorAttempts(ctx, studentID, pending)
	if err != nil {
		return nil, err
	}

	graded, err := s.repo.Answer().GetGradedByStudent(ctx, nil, studentID)
	if err != nil {
		return nil, err
	}
	gradedResponses := make([]*AttemptResponse, 0, len(graded))
	for _, attempt := range graded {
		gradedResponses = append(gradedResponses, toAttemptResponse(attempt))
	}

	assigned, err := s.repo.Question().GetByClass(ctx, nil, student.ClassLevel)
	if err != nil {
		return nil, err
	}

	return &StudentDashboard{
		AssignedCount:    len(assigned),
		CompletedCount:   len(assigned) - len(pending),
		PendingCount:     len(pending),
		AverageGrade:     avg,
		AverageLabel:     averageLabel(avg),
		SubjectAverages:  subjects,
		Growth:           growth,
		ClassRank:        rankOf(leaderboard, studentID),
		ClassToppers:     capEntries(leaderboard, topStudentCount),
		PendingHomework:  pendingEntries,
		GradedAttempts:   gradedResponses,
		PaymentConfirmed: student.PaymentConfirmed,
	}, nil
}

// TeacherDashboard builds the teacher's uploads and standing.
func (s *dashboardService) TeacherDashboard(ctx context.Context, teacherID string) (*TeacherDashboard, error) {
	teacher, err := s.repo.User().GetByID(ctx, nil, teacherID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	if !teacher.Role.IsStaff() {
		return nil, NewPermissionError(teacherID, "dashboard", "view", "not a staff account")
	}

	totalUploads, err := s.repo.Question().CountByUploader(ctx, nil, teacherID)
	if err != nil {
		return nil, err
	}

	today, err := s.homeworkService.TodayUploads(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	ranked, err := s.repo.User().GetTeachersRanked(ctx, nil)
	if err != nil {
		return nil, err
	}
	salaryRank := 0
	for i, t := range ranked {
		if t.ID == teacherID {
			salaryRank = i + 1
			break
		}
	}

	top, err := s.repo.Dashboard().TopStudents(ctx, nil, topStudentCount)
	if err != nil {
		return nil, err
	}

	allRanked, err := s.repo.Dashboard().StudentsRanked(ctx, nil)
	if err != nil {
		return nil, err
	}

	studentCount, err := s.repo.User().CountByRole(ctx, nil, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	attemptCount, err := s.repo.Answer().Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &TeacherDashboard{
		StudentCount:     studentCount,
		AttemptCount:     attemptCount,
		TotalUploads:     totalUploads,
		TodayUploads:     today,
		SalaryPoints:     teacher.SalaryPoints,
		SalaryRank:       salaryRank,
		TopStudents:      top,
		ClasswiseToppers: classwiseToppers(allRanked, topStudentCount),
	}, nil
}

// PrincipalDashboard builds school-wide analytics.
func (s *dashboardService) PrincipalDashboard(ctx context.Context) (*PrincipalDashboard, error) {
	subjects, err := s.repo.Dashboard().SchoolSubjectAverages(ctx, nil)
	if err != nil {
		return nil, err
	}

	classes, err := s.repo.Dashboard().ClassAverages(ctx, nil)
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.Dashboard().UploadActivityOnDate(ctx, nil, nowFunc())
	if err != nil {
		return nil, err
	}

	teachers, err := s.repo.User().GetTeachersRanked(ctx, nil)
	if err != nil {
		return nil, err
	}
	teacherSummaries := make([]UserSummary, 0, len(teachers))
	for _, t := range teachers {
		teacherSummaries = append(teacherSummaries, toUserSummary(t))
	}

	top, err := s.repo.Dashboard().TopStudents(ctx, nil, topStudentCount)
	if err != nil {
		return nil, err
	}

	studentCount, err := s.repo.User().CountByRole(ctx, nil, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	teacherCount, err := s.repo.User().CountByRole(ctx, nil, models.RoleTeacher)
	if err != nil {
		return nil, err
	}
	questionCount, err := s.repo.Question().Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &PrincipalDashboard{
		StudentCount:    studentCount,
		TeacherCount:    teacherCount,
		QuestionCount:   questionCount,
		SubjectRankings: subjects,
		ClassRankings:   classes,
		TodayActivity:   activity,
		TeachersRanked:  teacherSummaries,
		TopStudents:     top,
	}, nil
}

// AdminDashboard builds administration counts and pending confirmations.
func (s *dashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	studentCount, err := s.repo.User().CountByRole(ctx, nil, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	teacherCount, err := s.repo.User().CountByRole(ctx, nil, models.RoleTeacher)
	if err != nil {
		return nil, err
	}

	questionCount, err := s.repo.Question().Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	attemptCount, err := s.repo.Answer().Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	unconfirmedStudents, err := s.repo.User().GetUnconfirmedStudents(ctx, nil)
	if err != nil {
		return nil, err
	}

	unconfirmedStaff, err := s.repo.User().GetUnconfirmedStaff(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		StudentCount:        studentCount,
		TeacherCount:        teacherCount,
		QuestionCount:       questionCount,
		AttemptCount:        attemptCount,
		UnconfirmedStudents: toUserSummaries(unconfirmedStudents),
		UnconfirmedStaff:    toUserSummaries(unconfirmedStaff),
	}, nil
}

// withPriorAttempts attaches the student's ungraded attempt to each
// pending question so the resubmission page can show the last answer.
func (s *dashboardService) withPriorAttempts(ctx context.Context, studentID string, pending []*HomeworkResponse) ([]*PendingHomeworkEntry, error) {
	ungraded := false
	attempts, _, err := s.repo.Answer().List(ctx, nil, repositories.AnswerFilters{
		StudentID: &studentID,
		Graded:    &ungraded,
	})
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[uint]*models.AnswerAttempt, len(attempts))
	for _, attempt := range attempts {
		byQuestion[attempt.QuestionID] = attempt
	}

	entries := make([]*PendingHomeworkEntry, 0, len(pending))
	for _, hw := range pending {
		entry := &PendingHomeworkEntry{HomeworkResponse: hw}
		if attempt, ok := byQuestion[hw.ID]; ok {
			entry.PriorAttempt = toAttemptResponse(attempt)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ===== HELPERS =====

// averageLabel maps a graded average to its band label, rounding to the
// nearest band. Empty when no graded work exists.
func averageLabel(avg float64) string {
	if avg <= 0 {
		return ""
	}
	band := int(math.Round(avg))
	if band < grading.GradeNeedsImprovement {
		band = grading.GradeNeedsImprovement
	}
	if band > grading.GradeOutstanding {
		band = grading.GradeOutstanding
	}
	return grading.GradeLabel(band)
}

// rankOf finds a student's 1-based position in a ranking, 0 when absent.
func rankOf(entries []repositories.LeaderboardEntry, studentID string) int {
	for i, entry := range entries {
		if entry.StudentID == studentID {
			return i + 1
		}
	}
	return 0
}

func capEntries(entries []repositories.LeaderboardEntry, n int) []repositories.LeaderboardEntry {
	if len(entries) <= n {
		return entries
	}
	return entries[:n]
}

// classwiseToppers groups class-ordered entries and keeps the best n per
// class. Entries must already be sorted by class then average descending.
func classwiseToppers(entries []repositories.LeaderboardEntry, n int) map[string][]repositories.LeaderboardEntry {
	toppers := make(map[string][]repositories.LeaderboardEntry)
	for _, entry := range entries {
		if len(toppers[entry.ClassLevel]) < n {
			toppers[entry.ClassLevel] = append(toppers[entry.ClassLevel], entry)
		}
	}
	return toppers
}

func toUserSummary(u *models.User) UserSummary {
	return UserSummary{
		ID:               u.ID,
		UserName:         u.UserName,
		Email:            u.Email,
		Role:             string(u.Role),
		ClassLevel:       u.ClassLevel,
		PaymentConfirmed: u.PaymentConfirmed,
		IsConfirmed:      u.IsConfirmed,
		SalaryPoints:     u.SalaryPoints,
	}
}

func toUserSummaries(users []*models.User) []UserSummary {
	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, toUserSummary(u))
	}
	return summaries
}
